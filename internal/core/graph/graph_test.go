package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/factcheck/internal/core/model"
)

var testBands = Bands{Consistent: 0.70, Partial: 0.40}

func record(ref, cand string, class model.Classification, combined, fcs, cs float64) model.HallucinationRecord {
	return model.HallucinationRecord{
		ReferenceID:             ref,
		CandidateID:             cand,
		Classification:          class,
		CombinedSimilarity:      combined,
		FactualConsistencyScore: fcs,
		ContradictionScore:      cs,
	}
}

func testNodes() []model.GraphNode {
	return []model.GraphNode{
		{ID: "ref", Role: model.RoleReference, NumFacts: 8},
		{ID: "c2", Role: model.RoleCandidate},
		{ID: "c1", Role: model.RoleCandidate},
		{ID: "c3", Role: model.RoleCandidate},
	}
}

func testRecords() []model.HallucinationRecord {
	return []model.HallucinationRecord{
		record("ref", "c1", model.Consistent, 1, 1, 0.02),
		record("ref", "c2", model.Contradiction, 0.4, 0.3, 0.95),
		record("ref", "c3", model.Unevaluated, 0, 0, 0),
		record("c1", "c2", model.Consistent, 0.5, 0.6, 0.1),
	}
}

func TestBuild_CanonicalOrderAndEdges(t *testing.T) {
	g := Build(testNodes(), testRecords(), testBands)

	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
		assert.Equal(t, i, n.Index)
	}
	assert.Equal(t, []string{"c1", "c2", "c3", "ref"}, ids)

	require.Len(t, g.Edges, 3)
	for _, e := range g.Edges {
		assert.Less(t, e.Source, e.Target)
		assert.InDelta(t, 1.0, e.Weight+e.HallucinationScore, 1e-12)
	}

	ref, ok := g.Node("ref")
	require.True(t, ok)
	assert.Equal(t, model.ReferenceClass, ref.Classification)
	c2, _ := g.Node("c2")
	assert.Equal(t, model.Contradiction, c2.Classification)
	c3, _ := g.Node("c3")
	assert.Equal(t, model.Unevaluated, c3.Classification)

	m := g.ToMap()
	edges := m["edges"]
	require.Contains(t, edges, "c1|ref")
	e := edges["c1|ref"].(map[string]any)
	assert.Equal(t, string(model.EdgeConsistent), e["tag"])
	assert.InDelta(t, 1-0.02/3, e["weight"].(float64), 1e-12)
	assert.NotContains(t, edges, "c3|ref")

	partial := edges["c2|ref"].(map[string]any)
	assert.Equal(t, string(model.EdgeMutualHallucination), partial["tag"])

	nodes := m["nodes"]
	assert.Len(t, nodes, 4)
	assert.Equal(t, 8, nodes["ref"].(map[string]any)["num_facts"])
}

func TestBands_Tag(t *testing.T) {
	assert.Equal(t, model.EdgeConsistent, testBands.Tag(0.70))
	assert.Equal(t, model.EdgePartialHallucination, testBands.Tag(0.69))
	assert.Equal(t, model.EdgePartialHallucination, testBands.Tag(0.40))
	assert.Equal(t, model.EdgeMutualHallucination, testBands.Tag(0.39))
}

func TestCentrality_SumsToOneAndIgnoresInsertionOrder(t *testing.T) {
	g1 := Build(testNodes(), testRecords(), testBands)
	r1 := g1.Centrality(context.Background(), nil)

	nodes := testNodes()
	records := testRecords()
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	g2 := Build(nodes, records, testBands)
	r2 := g2.Centrality(context.Background(), DefaultPageRankOptions())

	var total float64
	for id, s := range r1.Scores {
		total += s
		assert.Equal(t, s, r2.Scores[id], id)
	}
	assert.InDelta(t, 1.0, total, 1e-12)
	assert.True(t, r1.Converged)

	// c3 has no evaluated edges and only receives the uniform share.
	assert.Less(t, r1.Scores["c3"], r1.Scores["c1"])
	for _, n := range g1.Nodes {
		assert.Equal(t, r1.Scores[n.ID], n.Centrality)
	}
}

func TestCentrality_Empty(t *testing.T) {
	g := Build(nil, nil, testBands)
	r := g.Centrality(context.Background(), nil)
	assert.Empty(t, r.Scores)
	assert.True(t, r.Converged)
}

func TestPageRankOptions_Validate(t *testing.T) {
	o := &PageRankOptions{DampingFactor: 2, MaxIterations: -1, Convergence: 0}
	o.Validate()
	assert.Equal(t, DefaultPageRankOptions(), o)
}

func TestRanking(t *testing.T) {
	g := Build(testNodes(), testRecords(), testBands)
	g.Centrality(context.Background(), nil)

	ranking := g.Ranking()
	require.Len(t, ranking, 4)
	for i, r := range ranking {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, ranking[i-1].Centrality, r.Centrality)
		}
	}
	assert.Equal(t, "c3", ranking[len(ranking)-1].ID)
}

func TestClusters(t *testing.T) {
	nodes := []model.GraphNode{
		{ID: "a1"}, {ID: "a2"}, {ID: "a3"},
		{ID: "b1"}, {ID: "b2"},
		{ID: "z"},
	}
	records := []model.HallucinationRecord{
		record("a1", "a2", model.Consistent, 1, 1, 0),
		record("a2", "a3", model.Consistent, 1, 1, 0),
		record("a3", "a1", model.Consistent, 1, 1, 0),
		record("b1", "b2", model.Consistent, 0.9, 0.9, 0),
		record("a1", "b1", model.Contradiction, 0.2, 0.2, 0.9),
		record("z", "a1", model.Contradiction, 0, 0, 1),
	}
	g := Build(nodes, records, testBands)

	assert.Equal(t, [][]string{{"a1", "a2", "a3"}, {"b1", "b2"}}, g.Clusters())
}
