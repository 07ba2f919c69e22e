package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/nlp"
	"github.com/agenthands/factcheck/internal/provider"
)

type MockDriver struct {
	mu      sync.Mutex
	Queries []string
	Params  []map[string]interface{}
	Err     error
	Result  neo4j.EagerResult
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.Result, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// BlockingEmbedder never answers before the context ends.
type BlockingEmbedder struct{}

func (BlockingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// FailingNLI errors whenever either text contains Trigger and otherwise
// delegates to the heuristic model.
type FailingNLI struct {
	Trigger string
}

func (f FailingNLI) Entailment(ctx context.Context, premise, hypothesis string) (model.EntailmentProbs, error) {
	if strings.Contains(premise, f.Trigger) || strings.Contains(hypothesis, f.Trigger) {
		return model.EntailmentProbs{}, errors.New("model overloaded")
	}
	return nlp.NewHeuristicNLI().Entailment(ctx, premise, hypothesis)
}

func localProviders() provider.Set {
	return provider.Set{
		Embedder:  nlp.NewHashingEmbedder(nlp.DefaultEmbeddingDim),
		Lexical:   nlp.NewTFIDFScorer(),
		Extractor: nlp.NewRuleExtractor(),
		NLI:       nlp.NewHeuristicNLI(),
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Concurrency.BatchTimeout = "10s"
	return cfg
}
