// Package report assembles the final risk report from the analysis
// outputs and delivers it through pluggable sinks. Assembly is a pure
// transformation: missing upstream inputs mark the report incomplete
// instead of failing the run.
package report

import (
	"fmt"
	"time"

	"github.com/graphsentry/riskgraph/assess"
	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/metrics"
	"github.com/graphsentry/riskgraph/structure"
)

// Report is the complete output of an analysis run.
type Report struct {
	// RunID uniquely identifies the analysis run.
	RunID string `json:"run_id"`

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Summary holds run-level counts and graph statistics.
	Summary Summary `json:"summary"`

	// Assessments are the per-user risk assessments, ordered by score
	// descending then user ID.
	Assessments []assess.Assessment `json:"assessments"`

	// Structures are the ranked suspicious substructures.
	Structures []structure.Structure `json:"structures"`

	// Recommendations are run-level follow-up actions derived from the
	// assessment and structure counts.
	Recommendations []string `json:"recommendations,omitempty"`

	// Incomplete is set when an upstream input was unavailable.
	Incomplete bool `json:"incomplete"`

	// MissingInputs names the unavailable inputs when Incomplete is set.
	MissingInputs []string `json:"missing_inputs,omitempty"`
}

// Summary holds run-level counts.
type Summary struct {
	// TotalUsers is the number of users in the analyzed snapshot.
	TotalUsers int `json:"total_users"`

	// TotalConnections is the number of connections in the snapshot.
	TotalConnections int `json:"total_connections"`

	// TierCounts maps each risk tier to the number of assessed users in it.
	TierCounts map[assess.Tier]int `json:"tier_counts"`

	// ReducedConfidenceCount is the number of assessments produced with
	// degraded inputs.
	ReducedConfidenceCount int `json:"reduced_confidence_count"`

	// GraphStats are the graph-level statistics, nil when the metrics
	// provider was unavailable.
	GraphStats *metrics.GraphStats `json:"graph_stats,omitempty"`
}

// Assemble builds a report from the analysis outputs. A nil snapshot or
// metrics set marks the report incomplete rather than failing.
func Assemble(runID string, generatedAt time.Time, snap *graph.Snapshot, assessments []assess.Assessment, structures []structure.Structure, set *metrics.Set) *Report {
	r := &Report{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Assessments: assessments,
		Structures:  structures,
		Summary: Summary{
			TierCounts: make(map[assess.Tier]int, len(assess.AllTiers())),
		},
	}
	for _, tier := range assess.AllTiers() {
		r.Summary.TierCounts[tier] = 0
	}

	if snap != nil {
		r.Summary.TotalUsers = snap.UserCount()
		r.Summary.TotalConnections = snap.ConnectionCount()
	} else {
		r.markMissing("graph_snapshot")
	}

	if set != nil {
		stats := set.Stats
		r.Summary.GraphStats = &stats
	} else {
		r.markMissing("graph_metrics")
	}

	for _, a := range assessments {
		r.Summary.TierCounts[a.Tier]++
		if a.ReducedConfidence {
			r.Summary.ReducedConfidenceCount++
		}
	}

	r.Recommendations = recommendations(assessments, structures)
	return r
}

func (r *Report) markMissing(input string) {
	r.Incomplete = true
	r.MissingInputs = append(r.MissingInputs, input)
}

// recommendations derives run-level follow-up actions from the volume of
// elevated assessments and the shape of the detected structures.
func recommendations(assessments []assess.Assessment, structures []structure.Structure) []string {
	var out []string

	elevated := 0
	urgent := 0
	for _, a := range assessments {
		if a.Tier.AtLeast(assess.TierMedium) {
			elevated++
		}
		if a.Tier.AtLeast(assess.TierHigh) {
			urgent++
		}
	}

	if elevated > 10 {
		out = append(out, fmt.Sprintf(
			"ALERT: %d users show elevated risk patterns; manual review of the highest-scoring cases is recommended.", elevated))
	}
	if urgent > 0 {
		out = append(out, fmt.Sprintf(
			"HIGH PRIORITY: %d users assessed at high or critical tier; these cases require immediate attention.", urgent))
	}

	clusters := 0
	large := 0
	for _, s := range structures {
		if s.Kind != structure.KindCluster {
			continue
		}
		clusters++
		if s.Size >= 3 {
			large++
		}
	}
	if clusters > 0 {
		out = append(out, fmt.Sprintf(
			"NETWORKS IDENTIFIED: %d groups of connected elevated-risk users; investigate possible coordination between members.", clusters))
	}
	if large > 0 {
		out = append(out, fmt.Sprintf(
			"COMPLEX NETWORKS: %d groups with 3 or more members; these may indicate coordinated activity.", large))
	}

	return out
}
