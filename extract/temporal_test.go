package extract

import (
	"testing"
	"time"

	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/policy"
	"github.com/graphsentry/riskgraph/signal"
)

func addTimedInteraction(t *testing.T, s *graph.Store, user, content string, ts time.Time, ceiling int) {
	t.Helper()
	in := graph.NewInteraction(user, content, graph.ActionView, ts)
	if ceiling >= 0 {
		in.WithTargetAgeMax(ceiling)
	}
	if err := s.AddInteraction(*in); err != nil {
		t.Fatalf("AddInteraction() error = %v", err)
	}
}

func TestTemporalFraction(t *testing.T) {
	s := graph.NewStore()
	if err := s.AddUser("adult", 40, nil); err != nil {
		t.Fatal(err)
	}
	// 2026-03-10 is a Tuesday. Three in school hours, one in the evening.
	schoolHour := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	addTimedInteraction(t, s, "adult", "c1", schoolHour, 8)
	addTimedInteraction(t, s, "adult", "c2", schoolHour.Add(time.Hour), 8)
	addTimedInteraction(t, s, "adult", "c3", schoolHour.Add(2*time.Hour), 8)
	addTimedInteraction(t, s, "adult", "c4", evening, 8)

	sigs := TemporalPatterns(s.Snapshot(), policy.Default())
	sig, ok := findSignal(sigs, "adult")
	if !ok {
		t.Fatal("no temporal signal for adult")
	}
	if sig.Value != 0.75 {
		t.Errorf("fraction = %v, want 0.75", sig.Value)
	}
}

func TestTemporalWeekendOutsideWindow(t *testing.T) {
	s := graph.NewStore()
	if err := s.AddUser("adult", 40, nil); err != nil {
		t.Fatal(err)
	}
	// 2026-03-14 is a Saturday: school-hour clock time but not a weekday.
	saturday := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	for i, c := range []string{"c1", "c2", "c3"} {
		addTimedInteraction(t, s, "adult", c, saturday.Add(time.Duration(i)*time.Hour), 8)
	}
	sigs := TemporalPatterns(s.Snapshot(), policy.Default())
	sig, _ := findSignal(sigs, "adult")
	if sig.Value != 0 {
		t.Errorf("fraction = %v, want 0 for weekend interactions", sig.Value)
	}
}

func TestTemporalInsufficientData(t *testing.T) {
	s := graph.NewStore()
	if err := s.AddUser("adult", 40, nil); err != nil {
		t.Fatal(err)
	}
	// Plenty of interactions, but only two minor-targeted: below minimum.
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	addTimedInteraction(t, s, "adult", "c1", ts, 8)
	addTimedInteraction(t, s, "adult", "c2", ts, 8)
	for _, c := range []string{"b1", "b2", "b3", "b4"} {
		addTimedInteraction(t, s, "adult", c, ts, -1)
	}

	sigs := TemporalPatterns(s.Snapshot(), policy.Default())
	sig, ok := findSignal(sigs, "adult")
	if !ok {
		t.Fatal("expected an informational temporal signal")
	}
	if sig.State != signal.StateInsufficientData {
		t.Errorf("state = %v, want insufficient_data", sig.State)
	}
}

func TestInWindowBoundaries(t *testing.T) {
	w := policy.Window{StartHour: 8, EndHour: 15, WeekdaysOnly: true}
	tuesday := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
	}
	if !InWindow(tuesday(8), w) {
		t.Error("08:00 should be inside the window")
	}
	if !InWindow(tuesday(14), w) {
		t.Error("14:00 should be inside the window")
	}
	if InWindow(tuesday(15), w) {
		t.Error("15:00 should be outside the window (exclusive end)")
	}
	if InWindow(tuesday(7), w) {
		t.Error("07:00 should be outside the window")
	}
	if InWindow(time.Time{}, w) {
		t.Error("zero timestamps are never inside the window")
	}
}
