// Package graph builds the consistency graph of a batch: one node per
// paragraph, one weighted edge per evaluated pair.
package graph

import (
	"sort"

	"github.com/agenthands/factcheck/internal/core/model"
)

// Bands are the lower weight bounds of the Consistent and PartialHallucination edge tags.
type Bands struct {
	Consistent float64
	Partial    float64
}

// Graph is an arena of nodes indexed by position plus an undirected edge list.
// Node order is canonical (sorted by ID), so indices do not depend on the
// order paragraphs were supplied in.
type Graph struct {
	Nodes []model.GraphNode
	Edges []model.GraphEdge

	bands Bands
	index map[string]int
}

// Build creates a graph from node stats and pair records. Records whose
// endpoints are unknown are ignored; unevaluated records add no edge but
// still mark the candidate node Unevaluated.
func Build(nodes []model.GraphNode, records []model.HallucinationRecord, bands Bands) *Graph {
	g := &Graph{bands: bands, index: make(map[string]int, len(nodes))}

	sorted := make([]model.GraphNode, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			continue
		}
		g.index[n.ID] = -1
		sorted = append(sorted, n)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i := range sorted {
		sorted[i].Index = i
		if sorted[i].Role == model.RoleReference {
			sorted[i].Classification = model.ReferenceClass
		}
		g.index[sorted[i].ID] = i
	}
	g.Nodes = sorted

	edges := make(map[[2]int]model.GraphEdge)
	for _, r := range records {
		a, okA := g.index[r.ReferenceID]
		b, okB := g.index[r.CandidateID]
		if !okA || !okB || a == b {
			continue
		}
		if g.Nodes[a].Role == model.RoleReference {
			g.Nodes[b].Classification = r.Classification
		}
		if !r.Evaluated() {
			continue
		}
		e := g.edge(a, b, r)
		edges[[2]int{e.Source, e.Target}] = e
	}
	for _, e := range edges {
		g.Edges = append(g.Edges, e)
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].Source != g.Edges[j].Source {
			return g.Edges[i].Source < g.Edges[j].Source
		}
		return g.Edges[i].Target < g.Edges[j].Target
	})
	return g
}

func (g *Graph) edge(a, b int, r model.HallucinationRecord) model.GraphEdge {
	if a > b {
		a, b = b, a
	}
	avg := HallucinationScore(r)
	e := model.GraphEdge{
		Source:             a,
		Target:             b,
		SourceID:           g.Nodes[a].ID,
		TargetID:           g.Nodes[b].ID,
		Weight:             1 - avg,
		HallucinationScore: avg,
	}
	e.Tag = g.bands.Tag(e.Weight)
	return e
}

// HallucinationScore averages the three per-pair hallucination signals.
func HallucinationScore(r model.HallucinationRecord) float64 {
	return ((1 - r.CombinedSimilarity) + (1 - r.FactualConsistencyScore) + r.ContradictionScore) / 3
}

// Tag maps an edge weight to its band.
func (b Bands) Tag(weight float64) model.EdgeTag {
	switch {
	case weight >= b.Consistent:
		return model.EdgeConsistent
	case weight >= b.Partial:
		return model.EdgePartialHallucination
	default:
		return model.EdgeMutualHallucination
	}
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (model.GraphNode, bool) {
	i, ok := g.index[id]
	if !ok {
		return model.GraphNode{}, false
	}
	return g.Nodes[i], true
}

// EdgeKey renders the "a|b" key of an edge, with IDs in arena order.
func EdgeKey(e model.GraphEdge) string {
	return e.SourceID + "|" + e.TargetID
}

// RankedParagraph is one row of the trust ranking.
type RankedParagraph struct {
	Rank           int                  `json:"rank"`
	ID             string               `json:"id"`
	Role           model.Role           `json:"role"`
	Classification model.Classification `json:"classification"`
	Centrality     float64              `json:"centrality"`
}

// Ranking orders nodes by centrality, highest first, breaking ties by ID.
func (g *Graph) Ranking() []RankedParagraph {
	out := make([]RankedParagraph, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = RankedParagraph{ID: n.ID, Role: n.Role, Classification: n.Classification, Centrality: n.Centrality}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Centrality != out[j].Centrality {
			return out[i].Centrality > out[j].Centrality
		}
		return out[i].ID < out[j].ID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// ToMap serializes the graph as {"nodes": {id: attrs}, "edges": {"a|b": attrs}}.
func (g *Graph) ToMap() map[string]map[string]any {
	nodes := make(map[string]any, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = map[string]any{
			"index":           n.Index,
			"role":            string(n.Role),
			"num_facts":       n.NumFacts,
			"num_entities":    n.NumEntities,
			"lexical_entropy": n.LexicalEntropy,
			"classification":  string(n.Classification),
			"centrality":      n.Centrality,
		}
	}
	edges := make(map[string]any, len(g.Edges))
	for _, e := range g.Edges {
		edges[EdgeKey(e)] = map[string]any{
			"source":            e.SourceID,
			"target":            e.TargetID,
			"weight":            e.Weight,
			"avg_hallucination": e.HallucinationScore,
			"tag":               string(e.Tag),
		}
	}
	return map[string]map[string]any{"nodes": nodes, "edges": edges}
}
