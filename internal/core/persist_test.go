package core

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/factcheck/internal/core/graph"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/driver"
)

func TestLoadRanking(t *testing.T) {
	keys := []string{"id", "role", "classification", "centrality"}
	drv := &MockDriver{Result: neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: keys, Values: []any{"ref", "reference", "Reference", 0.4}},
		{Keys: keys, Values: []any{"c1", "candidate", "Consistent", 0.35}},
		{Keys: keys, Values: []any{"c2", "candidate", "Fabrication", 0.25}},
	}}}
	e, err := NewEvaluator(testConfig(), localProviders(), drv)
	require.NoError(t, err)

	ranking, err := e.LoadRanking(context.Background(), "batch-1")
	require.NoError(t, err)
	assert.Equal(t, []graph.RankedParagraph{
		{Rank: 1, ID: "ref", Role: model.RoleReference, Classification: model.ReferenceClass, Centrality: 0.4},
		{Rank: 2, ID: "c1", Role: model.RoleCandidate, Classification: model.Consistent, Centrality: 0.35},
		{Rank: 3, ID: "c2", Role: model.RoleCandidate, Classification: model.Fabrication, Centrality: 0.25},
	}, ranking)
	assert.Equal(t, []string{driver.GetBatchRankingQuery}, drv.Queries)
	assert.Equal(t, "batch-1", drv.Params[0]["batch_id"])
}

func TestDeleteBatch(t *testing.T) {
	drv := &MockDriver{}
	e, err := NewEvaluator(testConfig(), localProviders(), drv)
	require.NoError(t, err)

	require.NoError(t, e.DeleteBatch(context.Background(), "batch-9"))
	assert.Equal(t, []string{driver.DeleteBatchQuery}, drv.Queries)
}

func TestPersistence_NoDriver(t *testing.T) {
	e, err := NewEvaluator(testConfig(), localProviders(), nil)
	require.NoError(t, err)

	_, err = e.LoadRanking(context.Background(), "b")
	assert.Error(t, err)
	assert.Error(t, e.DeleteBatch(context.Background(), "b"))
}
