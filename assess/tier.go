// Package assess combines extractor signals and externally supplied
// centrality metrics into per-user composite risk scores and tiers.
package assess

import "fmt"

// Tier discretizes the composite risk score.
type Tier string

const (
	// TierMinimal covers scores in [0, 0.2).
	TierMinimal Tier = "minimal"

	// TierLow covers scores in [0.2, 0.4).
	TierLow Tier = "low"

	// TierMedium covers scores in [0.4, 0.6).
	TierMedium Tier = "medium"

	// TierHigh covers scores in [0.6, 0.8).
	TierHigh Tier = "high"

	// TierCritical covers scores in [0.8, 1.0].
	TierCritical Tier = "critical"
)

// tierRanks order tiers for comparison, highest risk first.
var tierRanks = map[Tier]int{
	TierCritical: 4,
	TierHigh:     3,
	TierMedium:   2,
	TierLow:      1,
	TierMinimal:  0,
}

// IsValid returns true if the tier is a known value.
func (t Tier) IsValid() bool {
	_, ok := tierRanks[t]
	return ok
}

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}

// Rank returns the tier's position, 0 (minimal) through 4 (critical).
func (t Tier) Rank() int {
	return tierRanks[t]
}

// AtLeast reports whether t is the same tier as other or a higher one.
func (t Tier) AtLeast(other Tier) bool {
	return tierRanks[t] >= tierRanks[other]
}

// ParseTier parses a string into a Tier value.
// Returns an error if the string is not a valid tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid tier: %s", s)
	}
	return t, nil
}

// AllTiers returns all tiers in order from critical to minimal.
func AllTiers() []Tier {
	return []Tier{TierCritical, TierHigh, TierMedium, TierLow, TierMinimal}
}

// TierFor maps a composite score onto its tier. The bands partition [0,1]
// with no gaps or overlaps; a score exactly on a boundary belongs to the
// higher tier.
func TierFor(score float64) Tier {
	switch {
	case score >= 0.8:
		return TierCritical
	case score >= 0.6:
		return TierHigh
	case score >= 0.4:
		return TierMedium
	case score >= 0.2:
		return TierLow
	default:
		return TierMinimal
	}
}
