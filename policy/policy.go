// Package policy holds every tunable threshold of the risk engine as
// configuration. Nothing in the engine hard-codes a boundary: deployments
// load a Policy from YAML (or etcd), and the defaults here are starting
// points, not load-bearing constants.
package policy

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the complete set of thresholds and weights used by one
// assessment run. A run captures the policy once at start, so mid-run
// updates never mix parameter sets.
type Policy struct {
	// AgeGapThreshold is the minimum adult-minor age gap, in years, for a
	// connection to be flagged at all.
	AgeGapThreshold int `yaml:"age_gap_threshold"`

	// AgeGapExtreme is the gap, in years, at which the age-gap signal
	// saturates at 1.0. Must exceed AgeGapThreshold.
	AgeGapExtreme int `yaml:"age_gap_extreme"`

	// AdultAge is the single adult/minor boundary: age >= AdultAge is an
	// adult, age < AdultAge is a minor. No gap years belong to neither.
	AdultAge int `yaml:"adult_age"`

	// MinorContentCeiling classifies content as minor-targeted when its
	// declared audience age ceiling is at or below this value. Content
	// with no declared ceiling is unclassified, never minor-targeted.
	MinorContentCeiling int `yaml:"minor_content_ceiling"`

	// ActionWeights weight interaction actions before computing the
	// consumption ratio. Unlisted actions weigh as views.
	ActionWeights ActionWeights `yaml:"action_weights"`

	// MinInteractions is the minimum number of interactions an adult
	// needs before the content and temporal extractors produce a value
	// instead of an insufficient-data marker.
	MinInteractions int `yaml:"min_interactions"`

	// MinClusterOverlap is the minimum number of shared minor-targeted
	// content items for two users to land in the same cluster.
	MinClusterOverlap int `yaml:"min_cluster_overlap"`

	// ElevatedWindow is the elevated-risk time window for the temporal
	// extractor. Defaults to weekday school hours.
	ElevatedWindow Window `yaml:"elevated_window"`

	// Weights combine the per-source signals into the composite score.
	Weights Weights `yaml:"weights"`

	// HighRiskRatio and MediumRiskRatio are the documented weighted
	// consumption-ratio bands: above HighRiskRatio is high, between the
	// two is medium. Used by cluster membership (elevated = above
	// MediumRiskRatio).
	HighRiskRatio   float64 `yaml:"high_risk_ratio"`
	MediumRiskRatio float64 `yaml:"medium_risk_ratio"`

	// Rules are optional CEL expressions evaluated per adult user,
	// producing additional custom_rule signals.
	Rules []Rule `yaml:"rules,omitempty"`
}

// ActionWeights weight interaction action types. A share or download is a
// stronger indicator than a passive view.
type ActionWeights struct {
	Share    float64 `yaml:"share"`
	Download float64 `yaml:"download"`
	View     float64 `yaml:"view"`
}

// Window is a recurring time-of-day window. An interaction is inside the
// window when StartHour <= hour < EndHour and, if WeekdaysOnly, the day is
// Monday through Friday.
type Window struct {
	StartHour    int  `yaml:"start_hour"`
	EndHour      int  `yaml:"end_hour"`
	WeekdaysOnly bool `yaml:"weekdays_only"`
}

// Weights are the composite-score weights per signal source. Custom is the
// weight of policy-rule signals and defaults to zero, which makes rules
// evidence-only.
type Weights struct {
	Content    float64 `yaml:"content"`
	AgeGap     float64 `yaml:"age_gap"`
	Temporal   float64 `yaml:"temporal"`
	Centrality float64 `yaml:"centrality"`
	Custom     float64 `yaml:"custom"`
}

// Default returns the documented default policy.
func Default() Policy {
	return Policy{
		AgeGapThreshold:     15,
		AgeGapExtreme:       30,
		AdultAge:            18,
		MinorContentCeiling: 12,
		ActionWeights:       ActionWeights{Share: 1.0, Download: 0.6, View: 0.3},
		MinInteractions:     3,
		MinClusterOverlap:   2,
		ElevatedWindow:      Window{StartHour: 8, EndHour: 15, WeekdaysOnly: true},
		Weights:             Weights{Content: 0.4, AgeGap: 0.25, Temporal: 0.15, Centrality: 0.2},
		HighRiskRatio:       0.6,
		MediumRiskRatio:     0.3,
	}
}

// Load reads a Policy from a YAML file. Fields absent from the file keep
// their defaults.
func Load(path string) (Policy, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid policy in %s: %w", path, err)
	}
	return p, nil
}

// Parse unmarshals a Policy from raw YAML bytes, applying defaults for
// absent fields and validating the result.
func Parse(data []byte) (Policy, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks internal consistency of the policy.
func (p Policy) Validate() error {
	if p.AdultAge <= 0 {
		return fmt.Errorf("adult_age must be positive, got %d", p.AdultAge)
	}
	if p.AgeGapThreshold <= 0 {
		return fmt.Errorf("age_gap_threshold must be positive, got %d", p.AgeGapThreshold)
	}
	if p.AgeGapExtreme <= p.AgeGapThreshold {
		return fmt.Errorf("age_gap_extreme (%d) must exceed age_gap_threshold (%d)",
			p.AgeGapExtreme, p.AgeGapThreshold)
	}
	if p.MinorContentCeiling < 0 {
		return fmt.Errorf("minor_content_ceiling must be non-negative, got %d", p.MinorContentCeiling)
	}
	if p.MinInteractions < 1 {
		return fmt.Errorf("min_interactions must be at least 1, got %d", p.MinInteractions)
	}
	if p.MinClusterOverlap < 1 {
		return fmt.Errorf("min_cluster_overlap must be at least 1, got %d", p.MinClusterOverlap)
	}
	if p.ElevatedWindow.StartHour < 0 || p.ElevatedWindow.EndHour > 24 ||
		p.ElevatedWindow.StartHour >= p.ElevatedWindow.EndHour {
		return fmt.Errorf("elevated_window %d-%d is not a valid hour range",
			p.ElevatedWindow.StartHour, p.ElevatedWindow.EndHour)
	}
	for _, w := range []float64{p.ActionWeights.Share, p.ActionWeights.Download, p.ActionWeights.View} {
		if w < 0 {
			return fmt.Errorf("action weights must be non-negative")
		}
	}
	sum := p.Weights.Content + p.Weights.AgeGap + p.Weights.Temporal + p.Weights.Centrality + p.Weights.Custom
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("signal weights must sum to 1.0, got %v", sum)
	}
	if p.MediumRiskRatio < 0 || p.HighRiskRatio > 1 || p.MediumRiskRatio >= p.HighRiskRatio {
		return fmt.Errorf("risk ratio bands %v/%v are not ordered within [0,1]",
			p.MediumRiskRatio, p.HighRiskRatio)
	}
	for i, r := range p.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// ActionWeight returns the weight for an action tag. Unknown actions are
// weighted as views.
func (p Policy) ActionWeight(action string) float64 {
	switch action {
	case "share":
		return p.ActionWeights.Share
	case "download":
		return p.ActionWeights.Download
	default:
		return p.ActionWeights.View
	}
}
