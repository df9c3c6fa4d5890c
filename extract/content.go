package extract

import (
	"fmt"
	"sort"

	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/policy"
	"github.com/graphsentry/riskgraph/signal"
)

// Cluster is a group of adults with elevated minor-targeted consumption
// ratios who overlap on the same content items. Members and shared
// content are sorted, and the ID is derived from the members, so the same
// graph always yields the same clusters.
type Cluster struct {
	// ID is the sorted member list joined with "+".
	ID string `json:"id"`

	// Members are the user IDs in the cluster, sorted.
	Members []string `json:"members"`

	// SharedContent lists the minor-targeted content IDs shared by at
	// least two members, sorted.
	SharedContent []string `json:"shared_content"`
}

// ContentConsumption computes, for every adult user, the action-weighted
// ratio of minor-targeted content interactions to total interactions, and
// groups elevated adults into clusters by shared minor-targeted content.
//
// Content is minor-targeted when its declared audience age ceiling is at
// or below the policy ceiling; content without a declared ceiling is
// unclassified and contributes zero, never suspicion. Adults below the
// minimum interaction count receive an insufficient-data signal instead
// of a score.
func ContentConsumption(snap *graph.Snapshot, pol policy.Policy) ([]signal.Signal, []Cluster) {
	var signals []signal.Signal

	// Per elevated adult: the set of minor-targeted content IDs they
	// touched, the basis for cluster detection.
	elevated := make(map[string]map[string]struct{})

	for _, id := range snap.UserIDs() {
		u := snap.User(id)
		if !u.IsAdult(pol.AdultAge) {
			continue
		}

		interactions := snap.Interactions(id)
		if len(interactions) < pol.MinInteractions {
			signals = append(signals, signal.Insufficient(id, signal.SourceContentConsumption,
				fmt.Sprintf("%d interactions, minimum %d required", len(interactions), pol.MinInteractions)))
			continue
		}

		var totalWeight, minorWeight float64
		minorCount := 0
		minorContent := make(map[string]struct{})
		for _, in := range interactions {
			w := pol.ActionWeight(in.Action)
			totalWeight += w
			if ceiling, ok := in.TargetAgeMax(); ok && ceiling <= pol.MinorContentCeiling {
				minorWeight += w
				minorCount++
				minorContent[in.ContentID] = struct{}{}
			}
		}
		if totalWeight == 0 {
			signals = append(signals, signal.Insufficient(id, signal.SourceContentConsumption,
				"all interactions carry zero action weight"))
			continue
		}

		ratio := minorWeight / totalWeight
		evidence := fmt.Sprintf("%d of %d interactions with minor-targeted content, weighted ratio %.0f%%",
			minorCount, len(interactions), ratio*100)
		signals = append(signals, signal.New(id, signal.SourceContentConsumption, ratio, evidence))

		if ratio > pol.MediumRiskRatio && len(minorContent) > 0 {
			elevated[id] = minorContent
		}
	}

	sort.Slice(signals, func(i, j int) bool { return signals[i].UserID < signals[j].UserID })
	return signals, clusterByOverlap(elevated, pol.MinClusterOverlap)
}

// clusterByOverlap groups users into connected components of the overlap
// graph: two users are linked when they share at least minOverlap content
// items. Components of size one are dropped.
func clusterByOverlap(consumers map[string]map[string]struct{}, minOverlap int) []Cluster {
	ids := make([]string, 0, len(consumers))
	for id := range consumers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parent := make(map[string]string, len(ids))
	for _, id := range ids {
		parent[id] = id
	}
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if rb < ra {
				ra, rb = rb, ra
			}
			parent[rb] = ra
		}
	}

	// Shared content per component root, keyed by content ID.
	shared := make(map[string]map[string]struct{})
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			overlap := intersect(consumers[ids[i]], consumers[ids[j]])
			if len(overlap) < minOverlap {
				continue
			}
			union(ids[i], ids[j])
			root := find(ids[i])
			if shared[root] == nil {
				shared[root] = make(map[string]struct{})
			}
			for c := range overlap {
				shared[root][c] = struct{}{}
			}
		}
	}

	// Re-root shared sets after all unions, then collect members.
	members := make(map[string][]string)
	merged := make(map[string]map[string]struct{})
	for _, id := range ids {
		root := find(id)
		members[root] = append(members[root], id)
	}
	for root, set := range shared {
		r := find(root)
		if merged[r] == nil {
			merged[r] = make(map[string]struct{})
		}
		for c := range set {
			merged[r][c] = struct{}{}
		}
	}

	var out []Cluster
	for root, ms := range members {
		if len(ms) < 2 {
			continue
		}
		sort.Strings(ms)
		content := make([]string, 0, len(merged[root]))
		for c := range merged[root] {
			content = append(content, c)
		}
		sort.Strings(content)
		out = append(out, Cluster{ID: clusterID(ms), Members: ms, SharedContent: content})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clusterID(members []string) string {
	id := members[0]
	for _, m := range members[1:] {
		id += "+" + m
	}
	return id
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}
