package extract

import (
	"fmt"
	"sort"
	"time"

	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/policy"
	"github.com/graphsentry/riskgraph/signal"
)

// TemporalPatterns computes, for every adult user, the fraction of their
// minor-targeted content interactions that fall inside the elevated-risk
// time window (school hours by default). Adults with fewer minor-targeted
// interactions than the policy minimum receive an insufficient-data
// signal instead of a score.
func TemporalPatterns(snap *graph.Snapshot, pol policy.Policy) []signal.Signal {
	var signals []signal.Signal

	for _, id := range snap.UserIDs() {
		u := snap.User(id)
		if !u.IsAdult(pol.AdultAge) {
			continue
		}

		total := 0
		inWindow := 0
		for _, in := range snap.Interactions(id) {
			ceiling, ok := in.TargetAgeMax()
			if !ok || ceiling > pol.MinorContentCeiling {
				continue
			}
			total++
			if InWindow(in.Timestamp, pol.ElevatedWindow) {
				inWindow++
			}
		}

		if total < pol.MinInteractions {
			signals = append(signals, signal.Insufficient(id, signal.SourceTemporal,
				fmt.Sprintf("%d minor-targeted interactions, minimum %d required", total, pol.MinInteractions)))
			continue
		}

		fraction := float64(inWindow) / float64(total)
		evidence := fmt.Sprintf("%d of %d minor-targeted interactions during elevated-risk hours (%02d:00-%02d:00)",
			inWindow, total, pol.ElevatedWindow.StartHour, pol.ElevatedWindow.EndHour)
		signals = append(signals, signal.New(id, signal.SourceTemporal, fraction, evidence))
	}

	sort.Slice(signals, func(i, j int) bool { return signals[i].UserID < signals[j].UserID })
	return signals
}

// InWindow reports whether ts falls inside the elevated-risk window:
// StartHour <= hour < EndHour, and Monday through Friday when the window
// is weekdays-only.
func InWindow(ts time.Time, w policy.Window) bool {
	if ts.IsZero() {
		return false
	}
	if w.WeekdaysOnly {
		day := ts.Weekday()
		if day == time.Saturday || day == time.Sunday {
			return false
		}
	}
	h := ts.Hour()
	return h >= w.StartHour && h < w.EndHour
}
