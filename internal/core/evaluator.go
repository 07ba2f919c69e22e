// Package core wires the detection components into batch evaluation.
package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core/entailment"
	"github.com/agenthands/factcheck/internal/core/facts"
	"github.com/agenthands/factcheck/internal/core/fusion"
	"github.com/agenthands/factcheck/internal/core/graph"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/core/similarity"
	"github.com/agenthands/factcheck/internal/core/units"
	"github.com/agenthands/factcheck/internal/driver"
	"github.com/agenthands/factcheck/internal/nlp"
	"github.com/agenthands/factcheck/internal/provider"
)

var tracer = otel.Tracer("factcheck.core")

// ErrInvalidRequest marks a malformed batch request.
var ErrInvalidRequest = eris.New("invalid request")

type Evaluator struct {
	Config    *config.Config
	Providers provider.Set
	Driver    driver.GraphDriver

	Units      *units.Extractor
	Facts      *facts.Extractor
	Similarity *similarity.Engine
	Matcher    *facts.Matcher
	Entailment *entailment.Scorer
	Classifier *fusion.Classifier

	timeout time.Duration
}

// NewEvaluator validates cfg and assembles the pipeline. drv may be nil when
// graphs are not persisted.
func NewEvaluator(cfg *config.Config, providers provider.Set, drv driver.GraphDriver) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if missing := providers.Missing(); len(missing) > 0 {
		return nil, eris.Wrapf(config.ErrInvalid, "missing providers: %s", strings.Join(missing, ", "))
	}
	timeout, err := cfg.Concurrency.Timeout()
	if err != nil {
		return nil, eris.Wrap(config.ErrInvalid, err.Error())
	}
	var anchor *time.Time
	if t, ok, err := cfg.Evaluation.Anchor(); err != nil {
		return nil, eris.Wrap(config.ErrInvalid, err.Error())
	} else if ok {
		anchor = &t
	}

	return &Evaluator{
		Config:     cfg,
		Providers:  providers,
		Driver:     drv,
		Units:      units.NewExtractor(providers.Extractor),
		Facts:      facts.NewExtractor(providers.Extractor, anchor),
		Similarity: similarity.NewEngine(providers.Embedder, providers.Lexical, cfg.Weights.Similarity, cfg.Thresholds.UnitMatch),
		Matcher:    facts.NewMatcher(cfg.Thresholds, cfg.Weights.Facts),
		Entailment: entailment.NewScorer(providers.NLI),
		Classifier: fusion.NewClassifier(cfg.Thresholds),
		timeout:    timeout,
	}, nil
}

// Analysis is everything computed once per paragraph and shared by all of
// its pairs.
type Analysis struct {
	Paragraph     model.Paragraph
	Units         []model.SemanticUnit
	Facts         []model.Fact
	UnitVectors   [][]float32
	ActionVectors [][]float32
}

// Analyze extracts units and facts from one extractor call and embeds the
// units and action phrases in one embedding call.
func (e *Evaluator) Analyze(ctx context.Context, p model.Paragraph) (*Analysis, error) {
	start := time.Now()
	defer func() { pairDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds()) }()

	a := &Analysis{Paragraph: p}
	if strings.TrimSpace(p.Text) == "" {
		return a, nil
	}
	ext, err := e.Providers.Extractor.Extract(ctx, p.Text)
	if err != nil {
		return nil, eris.Wrapf(provider.Unavailable("extractor", err), "core: analyze %s", p.ID)
	}
	a.Units = units.FromExtraction(p, ext)
	a.Facts = e.Facts.FromExtraction(p, ext)

	texts := append(units.Texts(a.Units), facts.ActionPhrases(a.Facts)...)
	if len(texts) == 0 {
		return a, nil
	}
	vecs, err := e.Providers.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, eris.Wrapf(provider.Unavailable("embedder", err), "core: embed %s", p.ID)
	}
	if len(vecs) != len(texts) {
		return nil, eris.Wrapf(provider.Unavailable("embedder", eris.Errorf("got %d vectors for %d texts", len(vecs), len(texts))), "core: embed %s", p.ID)
	}
	a.UnitVectors = vecs[:len(a.Units)]
	a.ActionVectors = vecs[len(a.Units):]
	return a, nil
}

// Compare scores a candidate analysis against a reference analysis.
func (e *Evaluator) Compare(ctx context.Context, ref, cand *Analysis) (model.HallucinationRecord, error) {
	start := time.Now()
	sim, err := e.Similarity.CompareEmbedded(ctx, ref.Units, cand.Units, ref.UnitVectors, cand.UnitVectors)
	if err != nil {
		return model.HallucinationRecord{}, err
	}
	pairDuration.WithLabelValues("similarity").Observe(time.Since(start).Seconds())

	start = time.Now()
	var actionScores [][]float64
	refActions, candActions := facts.ActionPhrases(ref.Facts), facts.ActionPhrases(cand.Facts)
	if len(refActions) > 0 && len(candActions) > 0 {
		actionScores, err = e.Similarity.PhraseMatrix(ctx, refActions, candActions, ref.ActionVectors, cand.ActionVectors)
		if err != nil {
			return model.HallucinationRecord{}, err
		}
	}
	fm := e.Matcher.Match(ref.Facts, cand.Facts, actionScores)
	pairDuration.WithLabelValues("facts").Observe(time.Since(start).Seconds())

	var cs float64
	if sim.Degenerate {
		zap.L().Debug("core: degenerate input",
			zap.String("reference_id", ref.Paragraph.ID),
			zap.String("candidate_id", cand.Paragraph.ID),
			zap.Int("reference_units", len(ref.Units)),
			zap.Int("candidate_units", len(cand.Units)),
		)
	} else {
		start = time.Now()
		cs, err = e.Entailment.Score(ctx, ref.Paragraph.Text, cand.Paragraph.Text)
		if err != nil {
			return model.HallucinationRecord{}, err
		}
		pairDuration.WithLabelValues("entailment").Observe(time.Since(start).Seconds())
	}

	rec := e.Classifier.Classify(fusion.Signals{Similarity: sim, Facts: fm, Contradiction: cs})
	rec.ReferenceID = ref.Paragraph.ID
	rec.CandidateID = cand.Paragraph.ID
	return rec, nil
}

// EvaluatePair analyzes and compares a single pair.
func (e *Evaluator) EvaluatePair(ctx context.Context, ref, cand model.Paragraph) (model.HallucinationRecord, error) {
	ref.Role, cand.Role = model.RoleReference, model.RoleCandidate
	ra, err := e.Analyze(ctx, ref)
	if err != nil {
		observeProviderError(err)
		return model.HallucinationRecord{}, err
	}
	ca, err := e.Analyze(ctx, cand)
	if err != nil {
		observeProviderError(err)
		return model.HallucinationRecord{}, err
	}
	rec, err := e.Compare(ctx, ra, ca)
	if err != nil {
		observeProviderError(err)
		return model.HallucinationRecord{}, err
	}
	pairsTotal.WithLabelValues(string(rec.Classification)).Inc()
	return rec, nil
}

type BatchRequest struct {
	Reference  model.Paragraph   `json:"reference"`
	Candidates []model.Paragraph `json:"candidates"`
}

type BatchResult struct {
	BatchID string `json:"batch_id"`
	// Records holds one record per candidate, in request order.
	Records []model.HallucinationRecord `json:"records"`
	// PeerRecords holds candidate-vs-candidate comparisons when enabled.
	PeerRecords []model.HallucinationRecord `json:"peer_records,omitempty"`
	Graph       map[string]map[string]any   `json:"graph"`
	Ranking     []graph.RankedParagraph     `json:"ranking"`
	Clusters    [][]string                  `json:"clusters,omitempty"`
}

type pairJob struct {
	ref, cand int
}

// EvaluateBatch compares every candidate against the reference (and, when
// configured, against each other) and builds the consistency graph. Pairs
// that fail or run past the batch timeout are recorded as Unevaluated; the
// batch itself only fails on a malformed request.
func (e *Evaluator) EvaluateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	paragraphs, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	batchID := uuid.New().String()

	ctx, span := tracer.Start(ctx, "Evaluator.EvaluateBatch",
		trace.WithAttributes(
			attribute.String("batch_id", batchID),
			attribute.Int("candidates", len(req.Candidates)),
		),
	)
	defer span.End()

	started := time.Now()
	batchCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	analyses, analysisErrs := e.analyzeAll(batchCtx, paragraphs)

	jobs := make([]pairJob, 0, len(paragraphs)-1)
	for i := 1; i < len(paragraphs); i++ {
		jobs = append(jobs, pairJob{ref: 0, cand: i})
	}
	if e.Config.Evaluation.CompareCandidates {
		for i := 1; i < len(paragraphs); i++ {
			for j := i + 1; j < len(paragraphs); j++ {
				jobs = append(jobs, pairJob{ref: i, cand: j})
			}
		}
	}

	records := make([]model.HallucinationRecord, len(jobs))
	g, gctx := errgroup.WithContext(batchCtx)
	g.SetLimit(e.Config.Concurrency.Workers)
	for k, job := range jobs {
		g.Go(func() error {
			records[k] = e.runPair(gctx, paragraphs, analyses, analysisErrs, job)
			return nil
		})
	}
	_ = g.Wait()

	nodes := make([]model.GraphNode, len(paragraphs))
	for i, p := range paragraphs {
		nodes[i] = nodeStats(p, analyses[i])
	}
	bands := graph.Bands{Consistent: e.Config.Thresholds.EdgeConsistent, Partial: e.Config.Thresholds.EdgePartial}
	cg := graph.Build(nodes, records, bands)
	cg.Centrality(ctx, &graph.PageRankOptions{
		DampingFactor: e.Config.Graph.Damping,
		MaxIterations: e.Config.Graph.MaxIterations,
		Convergence:   e.Config.Graph.Convergence,
	})

	res := &BatchResult{
		BatchID:  batchID,
		Records:  records[:len(req.Candidates)],
		Graph:    cg.ToMap(),
		Ranking:  cg.Ranking(),
		Clusters: cg.Clusters(),
	}
	if len(records) > len(req.Candidates) {
		res.PeerRecords = records[len(req.Candidates):]
	}

	if e.Config.Evaluation.SaveGraph && e.Driver != nil {
		if err := e.SaveGraph(ctx, batchID, cg); err != nil {
			zap.L().Warn("core: save graph failed", zap.String("batch_id", batchID), zap.Error(err))
		}
	}

	unevaluated := 0
	for _, r := range records {
		if !r.Evaluated() {
			unevaluated++
		}
	}
	span.SetAttributes(attribute.Int("unevaluated", unevaluated))
	zap.L().Info("core: batch evaluated",
		zap.String("batch_id", batchID),
		zap.Int("candidates", len(req.Candidates)),
		zap.Int("pairs", len(records)),
		zap.Int("unevaluated", unevaluated),
		zap.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

// prepare assigns missing IDs and roles and rejects duplicate IDs. The
// reference is always at index 0.
func (e *Evaluator) prepare(req BatchRequest) ([]model.Paragraph, error) {
	paragraphs := make([]model.Paragraph, 0, len(req.Candidates)+1)
	ref := req.Reference
	ref.Role = model.RoleReference
	paragraphs = append(paragraphs, ref)
	for _, c := range req.Candidates {
		c.Role = model.RoleCandidate
		paragraphs = append(paragraphs, c)
	}
	seen := make(map[string]bool, len(paragraphs))
	for i := range paragraphs {
		if paragraphs[i].ID == "" {
			paragraphs[i].ID = uuid.New().String()
		}
		if seen[paragraphs[i].ID] {
			return nil, eris.Wrapf(ErrInvalidRequest, "duplicate paragraph id %q", paragraphs[i].ID)
		}
		seen[paragraphs[i].ID] = true
	}
	return paragraphs, nil
}

func (e *Evaluator) analyzeAll(ctx context.Context, paragraphs []model.Paragraph) ([]*Analysis, []error) {
	analyses := make([]*Analysis, len(paragraphs))
	errs := make([]error, len(paragraphs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Config.Concurrency.Workers)
	for i, p := range paragraphs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = eris.Wrapf(err, "core: analyze %s", p.ID)
				return nil
			}
			analyses[i], errs[i] = e.Analyze(gctx, p)
			if errs[i] != nil {
				observeProviderError(errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return analyses, errs
}

func (e *Evaluator) runPair(ctx context.Context, paragraphs []model.Paragraph, analyses []*Analysis, errs []error, job pairJob) model.HallucinationRecord {
	ref, cand := paragraphs[job.ref], paragraphs[job.cand]
	fail := func(err error) model.HallucinationRecord {
		zap.L().Warn("core: pair unevaluated",
			zap.String("reference_id", ref.ID),
			zap.String("candidate_id", cand.ID),
			zap.Error(err),
		)
		pairsTotal.WithLabelValues(string(model.Unevaluated)).Inc()
		return model.HallucinationRecord{
			ReferenceID:    ref.ID,
			CandidateID:    cand.ID,
			Classification: model.Unevaluated,
			Reason:         "Evaluation failed",
			Error:          err.Error(),
		}
	}

	if err := errs[job.ref]; err != nil {
		return fail(err)
	}
	if err := errs[job.cand]; err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(eris.Wrap(err, "core: batch deadline"))
	}
	rec, err := e.Compare(ctx, analyses[job.ref], analyses[job.cand])
	if err != nil {
		observeProviderError(err)
		return fail(err)
	}
	pairsTotal.WithLabelValues(string(rec.Classification)).Inc()
	return rec
}

func nodeStats(p model.Paragraph, a *Analysis) model.GraphNode {
	n := model.GraphNode{
		ID:             p.ID,
		Role:           p.Role,
		LexicalEntropy: nlp.Entropy(nlp.Tokenize(p.Text)),
	}
	if a != nil {
		n.NumFacts = len(a.Facts)
		n.NumEntities = facts.Count(a.Facts, model.FactNamedEntity)
	}
	return n
}
