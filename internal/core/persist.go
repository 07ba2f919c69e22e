package core

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/agenthands/factcheck/internal/core/graph"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/driver"
)

// SaveGraph writes a batch's consistency graph to the graph store: one Batch
// node, its Paragraph nodes and a CONSISTENT_WITH relationship per edge.
func (e *Evaluator) SaveGraph(ctx context.Context, batchID string, g *graph.Graph) error {
	if e.Driver == nil {
		return eris.New("core: no graph driver configured")
	}
	refID := ""
	for _, n := range g.Nodes {
		if n.Role == model.RoleReference {
			refID = n.ID
		}
	}
	_, err := e.Driver.ExecuteQuery(ctx, driver.SaveBatchQuery, map[string]interface{}{
		"batch_id":        batchID,
		"reference_id":    refID,
		"created_at":      time.Now().UTC().Format(time.RFC3339),
		"candidate_count": len(g.Nodes) - 1,
	})
	if err != nil {
		return eris.Wrapf(err, "core: save batch %s", batchID)
	}

	for _, n := range g.Nodes {
		params := map[string]interface{}{
			"batch_id":        batchID,
			"id":              n.ID,
			"role":            string(n.Role),
			"num_facts":       n.NumFacts,
			"num_entities":    n.NumEntities,
			"lexical_entropy": n.LexicalEntropy,
			"classification":  string(n.Classification),
			"centrality":      n.Centrality,
		}
		if _, err := e.Driver.ExecuteQuery(ctx, driver.SaveParagraphNodeQuery, params); err != nil {
			return eris.Wrapf(err, "core: save paragraph %s", n.ID)
		}
	}

	for _, edge := range g.Edges {
		params := map[string]interface{}{
			"batch_id":          batchID,
			"source_id":         edge.SourceID,
			"target_id":         edge.TargetID,
			"weight":            edge.Weight,
			"avg_hallucination": edge.HallucinationScore,
			"tag":               string(edge.Tag),
		}
		if _, err := e.Driver.ExecuteQuery(ctx, driver.SaveConsistencyEdgeQuery, params); err != nil {
			return eris.Wrapf(err, "core: save edge %s", graph.EdgeKey(edge))
		}
	}
	return nil
}

// LoadRanking reads a saved batch's ranking back from the graph store.
func (e *Evaluator) LoadRanking(ctx context.Context, batchID string) ([]graph.RankedParagraph, error) {
	if e.Driver == nil {
		return nil, eris.New("core: no graph driver configured")
	}
	res, err := e.Driver.ExecuteQuery(ctx, driver.GetBatchRankingQuery, map[string]interface{}{
		"batch_id": batchID,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "core: load ranking %s", batchID)
	}

	out := make([]graph.RankedParagraph, 0, len(res.Records))
	for i, rec := range res.Records {
		id, _ := rec.Get("id")
		role, _ := rec.Get("role")
		class, _ := rec.Get("classification")
		centrality, _ := rec.Get("centrality")

		rp := graph.RankedParagraph{Rank: i + 1}
		rp.ID, _ = id.(string)
		if s, ok := role.(string); ok {
			rp.Role = model.Role(s)
		}
		if s, ok := class.(string); ok {
			rp.Classification = model.Classification(s)
		}
		rp.Centrality, _ = centrality.(float64)
		out = append(out, rp)
	}
	return out, nil
}

// DeleteBatch removes a saved batch and its paragraphs.
func (e *Evaluator) DeleteBatch(ctx context.Context, batchID string) error {
	if e.Driver == nil {
		return eris.New("core: no graph driver configured")
	}
	_, err := e.Driver.ExecuteQuery(ctx, driver.DeleteBatchQuery, map[string]interface{}{
		"batch_id": batchID,
	})
	return eris.Wrapf(err, "core: delete batch %s", batchID)
}
