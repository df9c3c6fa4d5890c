package assess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/metrics"
	"github.com/graphsentry/riskgraph/policy"
	"github.com/graphsentry/riskgraph/signal"
)

func snapshotWith(t *testing.T, users map[string]int) *graph.Snapshot {
	t.Helper()
	s := graph.NewStore()
	for id, age := range users {
		require.NoError(t, s.AddUser(id, age, nil))
	}
	return s.Snapshot()
}

func metricsFor(values map[string]metrics.Centrality) *metrics.Set {
	return &metrics.Set{Centrality: values}
}

func TestAggregateSkipsMinors(t *testing.T) {
	snap := snapshotWith(t, map[string]int{"adult": 40, "kid": 12, "anon": graph.AgeUnknown})
	in := Inputs{
		Content: []signal.Signal{
			signal.New("adult", signal.SourceContentConsumption, 0.5, ""),
			signal.New("kid", signal.SourceContentConsumption, 0.9, ""),
		},
		Metrics: metricsFor(map[string]metrics.Centrality{"adult": {}, "kid": {}}),
	}
	out := Aggregate(snap, in, policy.Default())
	require.Len(t, out, 1)
	assert.Equal(t, "adult", out[0].UserID)
}

func TestAggregateWeightedSum(t *testing.T) {
	snap := snapshotWith(t, map[string]int{"adult": 40})
	in := Inputs{
		AgeGap:   []signal.Signal{signal.New("adult", signal.SourceAgeGap, 1.0, "gap 33")},
		Content:  []signal.Signal{signal.New("adult", signal.SourceContentConsumption, 1.0, "ratio 100%")},
		Temporal: []signal.Signal{signal.New("adult", signal.SourceTemporal, 0.0, "0 in window")},
		Metrics:  metricsFor(map[string]metrics.Centrality{"adult": {Degree: 0.5, Betweenness: 0.5}}),
	}
	out := Aggregate(snap, in, policy.Default())
	require.Len(t, out, 1)
	got := out[0]
	// 0.4*1 + 0.25*1 + 0.15*0 + 0.2*0.5 over full weight.
	assert.InDelta(t, 0.75, got.Score, 1e-12)
	assert.Equal(t, TierHigh, got.Tier)
	assert.False(t, got.ReducedConfidence)
}

func TestAggregateRenormalizesInsufficient(t *testing.T) {
	snap := snapshotWith(t, map[string]int{"adult": 40})
	in := Inputs{
		AgeGap:   []signal.Signal{signal.New("adult", signal.SourceAgeGap, 0.8, "gap 27")},
		Content:  []signal.Signal{signal.Insufficient("adult", signal.SourceContentConsumption, "2 of 3 minimum")},
		Temporal: []signal.Signal{signal.Insufficient("adult", signal.SourceTemporal, "no samples")},
		Metrics:  metricsFor(map[string]metrics.Centrality{"adult": {Degree: 0.4, Betweenness: 0.0}}),
	}
	out := Aggregate(snap, in, policy.Default())
	require.Len(t, out, 1)
	got := out[0]
	// Usable: age gap (0.25) and centrality (0.2). (0.25*0.8 + 0.2*0.2) / 0.45.
	assert.InDelta(t, (0.25*0.8+0.2*0.2)/0.45, got.Score, 1e-12)
	assert.True(t, got.ReducedConfidence)
}

func TestAggregateMetricsUnavailable(t *testing.T) {
	snap := snapshotWith(t, map[string]int{"adult": 40})
	in := Inputs{
		AgeGap:  []signal.Signal{signal.New("adult", signal.SourceAgeGap, 1.0, "gap 33")},
		Content: []signal.Signal{signal.New("adult", signal.SourceContentConsumption, 1.0, "ratio 100%")},
		Temporal: []signal.Signal{
			signal.New("adult", signal.SourceTemporal, 1.0, "all in window"),
		},
		Metrics: nil,
	}
	out := Aggregate(snap, in, policy.Default())
	require.Len(t, out, 1)
	got := out[0]
	// Centrality weight drops out of the denominator.
	assert.InDelta(t, 1.0, got.Score, 1e-12)
	assert.True(t, got.ReducedConfidence)
	assert.Equal(t, TierCritical, got.Tier)
}

func TestAggregateMonotoneInEachSignal(t *testing.T) {
	snap := snapshotWith(t, map[string]int{"adult": 40})
	base := Inputs{
		AgeGap:   []signal.Signal{signal.New("adult", signal.SourceAgeGap, 0.5, "")},
		Content:  []signal.Signal{signal.New("adult", signal.SourceContentConsumption, 0.5, "")},
		Temporal: []signal.Signal{signal.New("adult", signal.SourceTemporal, 0.5, "")},
		Metrics:  metricsFor(map[string]metrics.Centrality{"adult": {Degree: 0.5, Betweenness: 0.5}}),
	}
	pol := policy.Default()
	baseScore := Aggregate(snap, base, pol)[0].Score

	raise := func(in Inputs) float64 { return Aggregate(snap, in, pol)[0].Score }

	higher := base
	higher.AgeGap = []signal.Signal{signal.New("adult", signal.SourceAgeGap, 0.9, "")}
	assert.Greater(t, raise(higher), baseScore)

	higher = base
	higher.Content = []signal.Signal{signal.New("adult", signal.SourceContentConsumption, 0.9, "")}
	assert.Greater(t, raise(higher), baseScore)

	higher = base
	higher.Temporal = []signal.Signal{signal.New("adult", signal.SourceTemporal, 0.9, "")}
	assert.Greater(t, raise(higher), baseScore)

	higher = base
	higher.Metrics = metricsFor(map[string]metrics.Centrality{"adult": {Degree: 0.9, Betweenness: 0.9}})
	assert.Greater(t, raise(higher), baseScore)
}

func TestAggregateEvidenceOrdering(t *testing.T) {
	snap := snapshotWith(t, map[string]int{"adult": 40})
	in := Inputs{
		AgeGap:   []signal.Signal{signal.New("adult", signal.SourceAgeGap, 1.0, "gap 33")},
		Content:  []signal.Signal{signal.New("adult", signal.SourceContentConsumption, 1.0, "ratio 100%")},
		Temporal: []signal.Signal{signal.Insufficient("adult", signal.SourceTemporal, "no samples")},
		Metrics:  nil,
	}
	out := Aggregate(snap, in, policy.Default())
	require.Len(t, out, 1)
	sigs := out[0].Signals
	require.NotEmpty(t, sigs)
	// Content (0.4 weight) outranks age gap (0.25) at equal values, and
	// informational signals trail the usable ones.
	assert.Equal(t, signal.SourceContentConsumption, sigs[0].Source)
	assert.Equal(t, signal.SourceAgeGap, sigs[1].Source)
	assert.False(t, sigs[len(sigs)-1].Usable())
}

func TestAggregateCustomRuleEvidenceOnly(t *testing.T) {
	snap := snapshotWith(t, map[string]int{"adult": 40})
	in := Inputs{
		Content: []signal.Signal{signal.New("adult", signal.SourceContentConsumption, 0.0, "ratio 0%")},
		Custom:  []signal.Signal{signal.New("adult", signal.SourceCustomRule, 1.0, "rule heavy-downloader")},
		Metrics: metricsFor(map[string]metrics.Centrality{"adult": {}}),
	}
	out := Aggregate(snap, in, policy.Default())
	require.Len(t, out, 1)
	got := out[0]
	// Default custom weight is zero: the rule shows in evidence but does
	// not move the score.
	assert.Equal(t, 0.0, got.Score)
	found := false
	for _, sig := range got.Signals {
		if sig.Source == signal.SourceCustomRule {
			found = true
		}
	}
	assert.True(t, found, "rule match missing from evidence")
}

func TestAggregateDeterministicOrder(t *testing.T) {
	snap := snapshotWith(t, map[string]int{"a": 40, "b": 40, "c": 40})
	in := Inputs{
		Content: []signal.Signal{
			signal.New("a", signal.SourceContentConsumption, 0.5, ""),
			signal.New("b", signal.SourceContentConsumption, 0.5, ""),
			signal.New("c", signal.SourceContentConsumption, 0.9, ""),
		},
		Metrics: metricsFor(map[string]metrics.Centrality{"a": {}, "b": {}, "c": {}}),
	}
	out := Aggregate(snap, in, policy.Default())
	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0].UserID)
	// Equal scores break ties by user ID.
	assert.Equal(t, "a", out[1].UserID)
	assert.Equal(t, "b", out[2].UserID)
}
