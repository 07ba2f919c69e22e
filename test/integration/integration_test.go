//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/driver"
	"github.com/agenthands/factcheck/internal/llm"
)

const reference = "Revenue was $2.5M in Q4 2023, up 15%. CEO John Smith announced expansion Jan 15, 2024. Margin improved to 22%."

func connect(t *testing.T) *driver.MemgraphDriver {
	t.Helper()
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	d, err := driver.NewMemgraphDriver(context.Background(), uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close(context.Background()) })
	require.NoError(t, d.BuildIndices(context.Background()))
	return d
}

func TestFullFlow(t *testing.T) {
	d := connect(t)
	ctx := context.Background()

	cfg := config.Default()
	cfg.Evaluation.SaveGraph = true
	providers, closeProviders, err := llm.NewProviders(ctx, cfg)
	require.NoError(t, err)
	defer closeProviders()

	e, err := core.NewEvaluator(cfg, providers, d)
	require.NoError(t, err)

	suffix := uuid.New().String()[:8]
	res, err := e.EvaluateBatch(ctx, core.BatchRequest{
		Reference: model.Paragraph{ID: "ref-" + suffix, Text: reference},
		Candidates: []model.Paragraph{
			{ID: "c1-" + suffix, Text: "Revenue was $3.2M, up 20%. Expansion announced Jan 20."},
			{ID: "c2-" + suffix, Text: "Revenue declined in Q4. CEO announced expansion."},
			{ID: "c3-" + suffix, Text: reference},
		},
	})
	require.NoError(t, err)
	defer e.DeleteBatch(ctx, res.BatchID)

	stored, err := e.LoadRanking(ctx, res.BatchID)
	require.NoError(t, err)
	require.Len(t, stored, len(res.Ranking))
	for i := range stored {
		assert.Equal(t, res.Ranking[i].ID, stored[i].ID)
		assert.Equal(t, res.Ranking[i].Classification, stored[i].Classification)
		assert.InDelta(t, res.Ranking[i].Centrality, stored[i].Centrality, 1e-9)
	}

	edges, err := d.ExecuteQuery(ctx, `
		MATCH (:Paragraph {batch_id: $batch_id})-[r:CONSISTENT_WITH]->(:Paragraph {batch_id: $batch_id})
		RETURN count(r) AS count`, map[string]interface{}{"batch_id": res.BatchID})
	require.NoError(t, err)
	require.NotEmpty(t, edges.Records)
	count, _ := edges.Records[0].Get("count")
	assert.EqualValues(t, len(res.Graph["edges"]), count)

	require.NoError(t, e.DeleteBatch(ctx, res.BatchID))
	stored, err = e.LoadRanking(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLLMProviders(t *testing.T) {
	_ = godotenv.Load("../../.env")
	if os.Getenv("LLM_PROVIDER") == "" {
		t.Skip("Skipping integration test: LLM_PROVIDER not set")
	}
	ctx := context.Background()

	cfg := config.Default()
	cfg.ApplyEnv()
	cfg.Providers.NLI = config.ProviderLLM
	cfg.Providers.Extractor = config.ProviderLLM
	require.NoError(t, cfg.Validate())

	providers, closeProviders, err := llm.NewProviders(ctx, cfg)
	require.NoError(t, err)
	defer closeProviders()

	e, err := core.NewEvaluator(cfg, providers, nil)
	require.NoError(t, err)

	rec, err := e.EvaluatePair(ctx,
		model.Paragraph{ID: "r", Text: "Revenue increased 10% in Q4 2023."},
		model.Paragraph{ID: "c", Text: "Revenue fell 10% in Q4 2023."},
	)
	require.NoError(t, err)
	assert.NotEqual(t, model.Consistent, rec.Classification)
	assert.Greater(t, rec.ContradictionScore, 0.5)
}
