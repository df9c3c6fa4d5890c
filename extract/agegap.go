package extract

import (
	"fmt"
	"sort"

	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/policy"
	"github.com/graphsentry/riskgraph/signal"
)

// AgeGaps flags connections joining an adult and a minor across a large
// age gap and returns one signal per flagged adult, combined by maximum
// over that adult's flagged connections.
//
// Connections where either age is unknown are skipped outright; an
// unknown age is never treated as zero. The signal value grows linearly
// from 0 at the flag threshold to 1 at the extreme gap and saturates
// there, so one extreme connection dominates but unbounded fan-out cannot
// inflate the score further.
func AgeGaps(snap *graph.Snapshot, pol policy.Policy) []signal.Signal {
	var flagged []signal.Signal

	for _, conn := range snap.Connections() {
		a := snap.User(conn.A)
		b := snap.User(conn.B)
		if a == nil || b == nil || !a.AgeKnown() || !b.AgeKnown() {
			continue
		}

		var adult, minor *graph.User
		switch {
		case a.IsAdult(pol.AdultAge) && b.IsMinor(pol.AdultAge):
			adult, minor = a, b
		case b.IsAdult(pol.AdultAge) && a.IsMinor(pol.AdultAge):
			adult, minor = b, a
		default:
			continue
		}

		gap := adult.Age - minor.Age
		if gap <= pol.AgeGapThreshold {
			continue
		}

		value := float64(gap-pol.AgeGapThreshold) / float64(pol.AgeGapExtreme-pol.AgeGapThreshold)
		evidence := fmt.Sprintf("adult (age %d) connected to minor (age %d) via %q, gap %d years",
			adult.Age, minor.Age, conn.Type, gap)
		flagged = append(flagged, signal.New(adult.ID, signal.SourceAgeGap, value, evidence))
	}

	byUser := signal.MaxByUser(flagged)
	out := make([]signal.Signal, 0, len(byUser))
	for _, sig := range byUser {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// MaxGap returns, per adult, the largest flagged adult-minor age gap in
// years. Used to feed rule facts; mirrors the flagging conditions of
// AgeGaps exactly.
func MaxGap(snap *graph.Snapshot, pol policy.Policy) map[string]int {
	out := make(map[string]int)
	for _, conn := range snap.Connections() {
		a := snap.User(conn.A)
		b := snap.User(conn.B)
		if a == nil || b == nil || !a.AgeKnown() || !b.AgeKnown() {
			continue
		}
		var adult *graph.User
		var gap int
		switch {
		case a.IsAdult(pol.AdultAge) && b.IsMinor(pol.AdultAge):
			adult, gap = a, a.Age-b.Age
		case b.IsAdult(pol.AdultAge) && a.IsMinor(pol.AdultAge):
			adult, gap = b, b.Age-a.Age
		default:
			continue
		}
		if gap > pol.AgeGapThreshold && gap > out[adult.ID] {
			out[adult.ID] = gap
		}
	}
	return out
}
