package assess

import (
	"fmt"
	"sort"

	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/metrics"
	"github.com/graphsentry/riskgraph/policy"
	"github.com/graphsentry/riskgraph/signal"
)

// Assessment is the per-user output of the aggregator: the composite
// score, its tier, and the ordered signals that explain it.
type Assessment struct {
	// UserID identifies the assessed user.
	UserID string `json:"user_id"`

	// Score is the composite risk score in [0,1].
	Score float64 `json:"score"`

	// Tier is the discretized score band.
	Tier Tier `json:"tier"`

	// ReducedConfidence is set when any contributing signal was computed
	// from insufficient data or an external input was unavailable. The
	// score is still meaningful; it just rests on fewer signals.
	ReducedConfidence bool `json:"reduced_confidence"`

	// Signals lists the contributing signals ordered by weighted
	// contribution, largest first, with informational (insufficient or
	// unavailable) signals trailing. This is the evidence trail.
	Signals []signal.Signal `json:"signals"`
}

// Inputs carries the per-source signal lists and the external metrics
// into one aggregation.
type Inputs struct {
	AgeGap   []signal.Signal
	Content  []signal.Signal
	Temporal []signal.Signal
	Custom   []signal.Signal

	// Metrics is the external metrics set, or nil when the provider
	// failed or was not configured.
	Metrics *metrics.Set
}

// weighted pairs a signal with its policy weight during aggregation.
type weighted struct {
	sig    signal.Signal
	weight float64
}

// Aggregate computes one Assessment per adult user in the snapshot.
// Minors and users of unknown age are never scored as subjects; they
// appear only inside other users' evidence. The result is ordered by
// score descending, then user ID ascending.
//
// The composite is a weighted sum over the usable signals, renormalized
// over the weights of the sources that produced a usable value, so a
// missing signal reduces confidence instead of silently counting as zero.
func Aggregate(snap *graph.Snapshot, in Inputs, pol policy.Policy) []Assessment {
	ageGap := indexByUser(in.AgeGap)
	content := indexByUser(in.Content)
	temporal := indexByUser(in.Temporal)
	custom := signal.MaxByUser(in.Custom)

	var out []Assessment
	for _, id := range snap.UserIDs() {
		u := snap.User(id)
		if !u.IsAdult(pol.AdultAge) {
			continue
		}

		var parts []weighted

		// Age-gap signals cover every connection, so an absent signal
		// means no flagged connection: a legitimate zero, full weight.
		if sig, ok := ageGap[id]; ok {
			parts = append(parts, weighted{sig, pol.Weights.AgeGap})
		} else {
			parts = append(parts, weighted{
				signal.New(id, signal.SourceAgeGap, 0, "no flagged connections"),
				pol.Weights.AgeGap,
			})
		}

		parts = append(parts, weighted{signalOrInsufficient(content, id, signal.SourceContentConsumption), pol.Weights.Content})
		parts = append(parts, weighted{signalOrInsufficient(temporal, id, signal.SourceTemporal), pol.Weights.Temporal})

		if in.Metrics != nil {
			if c, ok := in.Metrics.Centrality[id]; ok {
				value := (c.Degree + c.Betweenness) / 2
				evidence := fmt.Sprintf("degree centrality %.3f, betweenness centrality %.3f", c.Degree, c.Betweenness)
				parts = append(parts, weighted{signal.New(id, signal.SourceCentrality, value, evidence), pol.Weights.Centrality})
			} else {
				parts = append(parts, weighted{
					signal.Unavailable(id, signal.SourceCentrality, "no centrality metrics for user"),
					pol.Weights.Centrality,
				})
			}
		} else {
			parts = append(parts, weighted{
				signal.Unavailable(id, signal.SourceCentrality, "graph metrics unavailable"),
				pol.Weights.Centrality,
			})
		}

		if pol.Weights.Custom > 0 {
			if sig, ok := custom[id]; ok {
				parts = append(parts, weighted{sig, pol.Weights.Custom})
			} else {
				parts = append(parts, weighted{
					signal.New(id, signal.SourceCustomRule, 0, "no matching rules"),
					pol.Weights.Custom,
				})
			}
		} else if sig, ok := custom[id]; ok {
			// Evidence-only rule match: zero weight, still recorded.
			parts = append(parts, weighted{sig, 0})
		}

		out = append(out, build(id, parts))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func build(id string, parts []weighted) Assessment {
	var num, denom float64
	reduced := false
	for _, p := range parts {
		if p.sig.Usable() {
			num += p.weight * p.sig.Value
			denom += p.weight
		} else {
			reduced = true
		}
	}
	score := 0.0
	if denom > 0 {
		score = signal.Clamp(num / denom)
	} else {
		reduced = true
	}

	// Contribution order: usable signals by weighted contribution
	// descending, then informational signals; source name breaks ties.
	sort.SliceStable(parts, func(i, j int) bool {
		a, b := parts[i], parts[j]
		if a.sig.Usable() != b.sig.Usable() {
			return a.sig.Usable()
		}
		ca, cb := a.weight*a.sig.Value, b.weight*b.sig.Value
		if ca != cb {
			return ca > cb
		}
		return a.sig.Source < b.sig.Source
	})
	sigs := make([]signal.Signal, len(parts))
	for i, p := range parts {
		sigs[i] = p.sig
	}

	return Assessment{
		UserID:            id,
		Score:             score,
		Tier:              TierFor(score),
		ReducedConfidence: reduced,
		Signals:           sigs,
	}
}

func signalOrInsufficient(byUser map[string]signal.Signal, id string, source signal.Source) signal.Signal {
	if sig, ok := byUser[id]; ok {
		return sig
	}
	return signal.Insufficient(id, source, "no data for user")
}

func indexByUser(signals []signal.Signal) map[string]signal.Signal {
	out := make(map[string]signal.Signal, len(signals))
	for _, s := range signals {
		out[s.UserID] = s
	}
	return out
}

// ByUser indexes assessments by user ID.
func ByUser(assessments []Assessment) map[string]Assessment {
	out := make(map[string]Assessment, len(assessments))
	for _, a := range assessments {
		out[a.UserID] = a
	}
	return out
}
