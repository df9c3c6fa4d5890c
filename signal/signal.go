// Package signal defines the intermediate suspicion values produced by the
// extractors and consumed by the risk aggregator. A Signal is always tagged
// with its origin and a human-readable evidence string so the final
// assessment can explain itself.
package signal

import "fmt"

// Source identifies which extractor produced a signal.
type Source string

const (
	// SourceAgeGap indicates the age-gap anomaly extractor.
	SourceAgeGap Source = "age_gap"

	// SourceContentConsumption indicates the content-consumption extractor.
	SourceContentConsumption Source = "content_consumption"

	// SourceTemporal indicates the temporal-pattern extractor.
	SourceTemporal Source = "temporal"

	// SourceCentrality indicates externally supplied centrality metrics.
	SourceCentrality Source = "centrality"

	// SourceCustomRule indicates a policy-defined CEL rule.
	SourceCustomRule Source = "custom_rule"
)

// IsValid returns true if the source is a known extractor tag.
func (s Source) IsValid() bool {
	switch s {
	case SourceAgeGap, SourceContentConsumption, SourceTemporal, SourceCentrality, SourceCustomRule:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source.
func (s Source) String() string {
	return string(s)
}

// ParseSource parses a string into a Source value.
// Returns an error if the string is not a known source tag.
func ParseSource(s string) (Source, error) {
	src := Source(s)
	if !src.IsValid() {
		return "", fmt.Errorf("invalid signal source: %s", s)
	}
	return src, nil
}

// State describes whether a signal carries a usable value.
type State string

const (
	// StateOK indicates the signal value was computed from sufficient data.
	StateOK State = "ok"

	// StateInsufficientData indicates the user had too few samples for the
	// extractor to produce a meaningful value. This is informational, not
	// an absence of risk; the aggregator excludes the signal's weight and
	// marks the assessment reduced-confidence.
	StateInsufficientData State = "insufficient_data"

	// StateUnavailable indicates an external input (graph metrics) failed
	// or was not supplied.
	StateUnavailable State = "unavailable"
)

// IsValid returns true if the state is a known value.
func (s State) IsValid() bool {
	switch s {
	case StateOK, StateInsufficientData, StateUnavailable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Signal is a per-user suspicion value in [0,1] produced by one extractor.
// Zero is a valid, meaningful score; missing data is expressed through
// State, never through a sentinel value.
type Signal struct {
	// UserID identifies the assessed user.
	UserID string `json:"user_id"`

	// Source tags the extractor that produced the signal.
	Source Source `json:"source"`

	// Value is the signal strength in [0,1]. Meaningless unless State
	// is StateOK.
	Value float64 `json:"value"`

	// State reports whether Value was computed from sufficient data.
	State State `json:"state"`

	// Evidence is a human-readable explanation of the value, kept for
	// auditability in the final assessment.
	Evidence string `json:"evidence"`
}

// New creates a computed signal, clamping the value into [0,1].
func New(userID string, source Source, value float64, evidence string) Signal {
	return Signal{
		UserID:   userID,
		Source:   source,
		Value:    Clamp(value),
		State:    StateOK,
		Evidence: evidence,
	}
}

// Insufficient creates an informational signal for a user whose sample
// count was below the policy minimum.
func Insufficient(userID string, source Source, evidence string) Signal {
	return Signal{UserID: userID, Source: source, State: StateInsufficientData, Evidence: evidence}
}

// Unavailable creates a signal marking an external input that failed or
// was absent.
func Unavailable(userID string, source Source, evidence string) Signal {
	return Signal{UserID: userID, Source: source, State: StateUnavailable, Evidence: evidence}
}

// Usable reports whether the signal carries a computed value.
func (s Signal) Usable() bool {
	return s.State == StateOK
}

// Clamp bounds v into [0,1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// MaxByUser combines multiple signals from the same source by keeping, per
// user, the one with the highest value. A single extreme observation must
// not be diluted by averaging with benign ones, and fan-out must not
// inflate the score, so maximum is the combination rule.
func MaxByUser(signals []Signal) map[string]Signal {
	out := make(map[string]Signal)
	for _, sig := range signals {
		cur, ok := out[sig.UserID]
		if !ok {
			out[sig.UserID] = sig
			continue
		}
		if !cur.Usable() && sig.Usable() {
			out[sig.UserID] = sig
			continue
		}
		if cur.Usable() && sig.Usable() && sig.Value > cur.Value {
			out[sig.UserID] = sig
		}
	}
	return out
}
