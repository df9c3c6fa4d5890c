package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphsentry/riskgraph/assess"
	"github.com/graphsentry/riskgraph/extract"
	"github.com/graphsentry/riskgraph/metrics"
)

func mkAssessment(id string, score float64) assess.Assessment {
	return assess.Assessment{UserID: id, Score: score, Tier: assess.TierFor(score)}
}

func TestAnalyzeClusterFromSharedContent(t *testing.T) {
	clusters := []extract.Cluster{
		{ID: "adult1+adult2", Members: []string{"adult1", "adult2"}, SharedContent: []string{"c1", "c2", "c3"}},
	}
	assessments := []assess.Assessment{
		mkAssessment("adult1", 0.7),
		mkAssessment("adult2", 0.5),
		mkAssessment("adult3", 0.1),
	}

	out := Analyze(clusters, assessments, nil)
	require.Len(t, out, 1)

	s := out[0]
	assert.Equal(t, "adult1+adult2", s.ID)
	assert.Equal(t, KindCluster, s.Kind)
	assert.Equal(t, 2, s.Size)
	assert.InDelta(t, 0.6, s.MeanScore, 1e-9)
	assert.Equal(t, []string{"c1", "c2", "c3"}, s.SharedContent)
	assert.False(t, s.HasCutVertex)

	// Members sorted by score descending.
	require.Len(t, s.Members, 2)
	assert.Equal(t, "adult1", s.Members[0].UserID)
	assert.Equal(t, "adult2", s.Members[1].UserID)
}

func TestAnalyzeCriticalUserSingleton(t *testing.T) {
	assessments := []assess.Assessment{
		mkAssessment("u1", 0.85),
		mkAssessment("u2", 0.65),
		mkAssessment("u3", 0.55), // medium, not emitted
	}

	out := Analyze(nil, assessments, nil)
	require.Len(t, out, 2)

	assert.Equal(t, "u1", out[0].ID)
	assert.Equal(t, KindCriticalUser, out[0].Kind)
	assert.Equal(t, 1, out[0].Size)
	assert.Equal(t, "u2", out[1].ID)
}

func TestAnalyzeClusteredUserNotDoubleCounted(t *testing.T) {
	clusters := []extract.Cluster{
		{ID: "u1+u2", Members: []string{"u1", "u2"}, SharedContent: []string{"c1", "c2"}},
	}
	assessments := []assess.Assessment{
		mkAssessment("u1", 0.9), // critical, but already in a cluster
		mkAssessment("u2", 0.4),
		mkAssessment("u3", 0.7),
	}

	out := Analyze(clusters, assessments, nil)
	require.Len(t, out, 2)
	for _, s := range out {
		if s.Kind == KindCriticalUser {
			assert.Equal(t, "u3", s.ID)
		}
	}
}

func TestAnalyzeCutVertexBonus(t *testing.T) {
	set := &metrics.Set{ArticulationPoints: map[string]bool{"u1": true}}
	assessments := []assess.Assessment{
		mkAssessment("u1", 0.6),
		mkAssessment("u2", 0.6),
	}

	out := Analyze(nil, assessments, set)
	require.Len(t, out, 2)

	// Same score, but u1 is an articulation point and ranks first.
	assert.Equal(t, "u1", out[0].ID)
	assert.True(t, out[0].HasCutVertex)
	assert.False(t, out[1].HasCutVertex)
	assert.InDelta(t, 0.5, out[0].Priority-out[1].Priority, 1e-9)
}

func TestAnalyzeOrdering(t *testing.T) {
	clusters := []extract.Cluster{
		{ID: "a+b", Members: []string{"a", "b"}, SharedContent: []string{"c1", "c2"}},
		{ID: "c+d", Members: []string{"c", "d"}, SharedContent: []string{"c3", "c4"}},
	}
	assessments := []assess.Assessment{
		mkAssessment("a", 0.5),
		mkAssessment("b", 0.5),
		mkAssessment("c", 0.5),
		mkAssessment("d", 0.5),
	}

	out := Analyze(clusters, assessments, nil)
	require.Len(t, out, 2)

	// Identical priority, mean, and size: ID ascending breaks the tie.
	assert.Equal(t, "a+b", out[0].ID)
	assert.Equal(t, "c+d", out[1].ID)
}

func TestAnalyzeClusterOutranksEqualSingleton(t *testing.T) {
	clusters := []extract.Cluster{
		{ID: "a+b", Members: []string{"a", "b"}, SharedContent: []string{"c1", "c2"}},
	}
	assessments := []assess.Assessment{
		mkAssessment("a", 0.7),
		mkAssessment("b", 0.7),
		mkAssessment("solo", 0.7),
	}

	out := Analyze(clusters, assessments, nil)
	require.Len(t, out, 2)

	// Larger groups at the same mean risk rank higher.
	assert.Equal(t, "a+b", out[0].ID)
	assert.Equal(t, "solo", out[1].ID)
	assert.Greater(t, out[0].Priority, out[1].Priority)
}

func TestAnalyzeEmpty(t *testing.T) {
	out := Analyze(nil, nil, nil)
	assert.Empty(t, out)
}
