// Package structure ranks network substructures worth investigating:
// consumption clusters from the content extractor, and individually
// high-risk users who belong to no cluster. Structures whose members are
// cut vertices rank higher, since isolating them has outsized structural
// effect on the graph.
package structure

import (
	"sort"

	"github.com/graphsentry/riskgraph/assess"
	"github.com/graphsentry/riskgraph/extract"
	"github.com/graphsentry/riskgraph/metrics"
)

// Kind distinguishes the substructure types.
type Kind string

const (
	// KindCluster is a group of adults sharing minor-targeted content.
	KindCluster Kind = "cluster"

	// KindCriticalUser is a single high- or critical-tier user outside
	// any cluster.
	KindCriticalUser Kind = "critical_user"
)

// Structure is a ranked network substructure with the assessments of its
// members.
type Structure struct {
	// ID names the substructure: the cluster ID, or the user ID for a
	// critical-user singleton.
	ID string `json:"id"`

	// Kind is the substructure type.
	Kind Kind `json:"kind"`

	// Priority is the investigative priority; the output is ordered by
	// it, descending.
	Priority float64 `json:"priority"`

	// Size is the member count.
	Size int `json:"size"`

	// MeanScore is the mean composite risk score of the members.
	MeanScore float64 `json:"mean_score"`

	// HasCutVertex is set when any member is an articulation point or a
	// bridge endpoint in the supplied graph metrics.
	HasCutVertex bool `json:"has_cut_vertex"`

	// SharedContent lists the overlapping minor-targeted content IDs for
	// cluster structures.
	SharedContent []string `json:"shared_content,omitempty"`

	// Members holds the members' risk assessments, ordered by score
	// descending then user ID.
	Members []assess.Assessment `json:"members"`
}

// Analyze ranks the given clusters and the remaining high/critical-tier
// users. The ordering is fully deterministic: priority descending, then
// mean score descending, then size descending, then ID ascending.
//
// The metrics set may be nil; structures are then ranked without the
// cut-vertex bonus.
func Analyze(clusters []extract.Cluster, assessments []assess.Assessment, set *metrics.Set) []Structure {
	byUser := assess.ByUser(assessments)
	clustered := make(map[string]bool)

	var out []Structure
	for _, c := range clusters {
		members := make([]assess.Assessment, 0, len(c.Members))
		for _, id := range c.Members {
			clustered[id] = true
			if a, ok := byUser[id]; ok {
				members = append(members, a)
			}
		}
		if len(members) == 0 {
			continue
		}
		out = append(out, buildStructure(c.ID, KindCluster, members, c.SharedContent, set))
	}

	for _, a := range assessments {
		if clustered[a.UserID] || !a.Tier.AtLeast(assess.TierHigh) {
			continue
		}
		out = append(out, buildStructure(a.UserID, KindCriticalUser, []assess.Assessment{a}, nil, set))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.MeanScore != b.MeanScore {
			return a.MeanScore > b.MeanScore
		}
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return a.ID < b.ID
	})
	return out
}

// buildStructure computes the priority as the mean member risk weighted
// by a size factor that saturates at ten members, plus a fixed bonus when
// a member is a cut vertex.
func buildStructure(id string, kind Kind, members []assess.Assessment, shared []string, set *metrics.Set) Structure {
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].UserID < members[j].UserID
	})

	total := 0.0
	cut := false
	for _, m := range members {
		total += m.Score
		if set != nil && set.IsCutVertex(m.UserID) {
			cut = true
		}
	}
	mean := total / float64(len(members))

	sizeFactor := float64(len(members)) / 10.0
	if sizeFactor > 1 {
		sizeFactor = 1
	}
	priority := mean * (1 + sizeFactor)
	if cut {
		priority += 0.5
	}

	return Structure{
		ID:            id,
		Kind:          kind,
		Priority:      priority,
		Size:          len(members),
		MeanScore:     mean,
		HasCutVertex:  cut,
		SharedContent: shared,
		Members:       members,
	}
}
