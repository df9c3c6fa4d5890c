package extract

import (
	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/policy"
)

// RuleFacts builds the per-adult fact set that policy rules evaluate
// against. The facts mirror what the built-in extractors compute: totals,
// minor-targeted counts, the weighted consumption ratio, degree, and the
// largest flagged age gap.
func RuleFacts(snap *graph.Snapshot, pol policy.Policy) map[string]policy.Facts {
	gaps := MaxGap(snap, pol)
	out := make(map[string]policy.Facts)

	for _, id := range snap.UserIDs() {
		u := snap.User(id)
		if !u.IsAdult(pol.AdultAge) {
			continue
		}

		interactions := snap.Interactions(id)
		var totalWeight, minorWeight float64
		minorCount := 0
		for _, in := range interactions {
			w := pol.ActionWeight(in.Action)
			totalWeight += w
			if ceiling, ok := in.TargetAgeMax(); ok && ceiling <= pol.MinorContentCeiling {
				minorWeight += w
				minorCount++
			}
		}
		ratio := 0.0
		if len(interactions) >= pol.MinInteractions && totalWeight > 0 {
			ratio = minorWeight / totalWeight
		}

		out[id] = policy.Facts{
			Age:           u.Age,
			Interactions:  len(interactions),
			MinorTargeted: minorCount,
			WeightedRatio: ratio,
			Connections:   snap.Degree(id),
			MaxAgeGap:     gaps[id],
		}
	}
	return out
}
