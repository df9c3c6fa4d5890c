// Package metrics defines the Graph Metrics Provider contract: the
// topological measures the risk aggregator and structure analyzer consume
// but never compute themselves. A gonum-backed implementation is included;
// deployments with an existing graph-analytics service can satisfy the
// Provider interface instead.
package metrics

import (
	"context"
	"errors"

	"github.com/graphsentry/riskgraph/graph"
)

// ErrUnavailable indicates the metrics provider failed or returned partial
// data. Aggregation proceeds without centrality input and marks the
// affected assessments reduced-confidence; this error never aborts a run.
var ErrUnavailable = errors.New("graph metrics unavailable")

// Provider computes topological measures over a frozen graph snapshot.
// Implementations must be deterministic for a given snapshot.
type Provider interface {
	Compute(ctx context.Context, snap *graph.Snapshot) (*Set, error)
}

// Centrality holds the per-user centrality measures, each normalized to
// [0,1].
type Centrality struct {
	Degree      float64 `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`
	Eigenvector float64 `json:"eigenvector"`
	Katz        float64 `json:"katz"`
	PageRank    float64 `json:"pagerank"`
}

// GraphStats are scalar graph-level statistics. Distance-based measures
// are pointers and nil when the graph is disconnected: an undefined
// diameter is omitted, never reported as zero.
type GraphStats struct {
	Nodes         int      `json:"nodes"`
	Edges         int      `json:"edges"`
	Density       float64  `json:"density"`
	AvgClustering float64  `json:"avg_clustering"`
	Components    int      `json:"components"`
	Diameter      *float64 `json:"diameter,omitempty"`
	Radius        *float64 `json:"radius,omitempty"`
	AvgPathLength *float64 `json:"avg_path_length,omitempty"`
}

// Connected reports whether the distance statistics are defined.
func (s GraphStats) Connected() bool {
	return s.Components <= 1
}

// Set is the full output of one provider computation.
type Set struct {
	// Centrality maps user ID to normalized centrality measures.
	Centrality map[string]Centrality `json:"centrality"`

	// Communities maps user ID to a community identifier.
	Communities map[string]string `json:"communities"`

	// Bridges are the edges whose removal disconnects part of the graph,
	// identified by endpoint pair.
	Bridges []graph.EdgeKey `json:"bridges"`

	// ArticulationPoints are the users whose removal disconnects part of
	// the graph.
	ArticulationPoints map[string]bool `json:"articulation_points"`

	// Stats holds graph-level statistics.
	Stats GraphStats `json:"stats"`
}

// IsBridgeEndpoint reports whether the user is an endpoint of any bridge.
func (s *Set) IsBridgeEndpoint(userID string) bool {
	for _, b := range s.Bridges {
		if b.A == userID || b.B == userID {
			return true
		}
	}
	return false
}

// IsCutVertex reports whether the user is an articulation point or a
// bridge endpoint: a node whose isolation has outsized structural effect.
func (s *Set) IsCutVertex(userID string) bool {
	return s.ArticulationPoints[userID] || s.IsBridgeEndpoint(userID)
}
