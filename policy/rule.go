package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Rule is a deployment-defined suspicion rule: a CEL boolean expression
// over per-user facts. When the expression evaluates true for a user, the
// engine emits a custom_rule signal with the rule's score. Rules replace
// code changes for heuristics the built-in extractors do not cover.
//
// Example, in YAML:
//
//	rules:
//	  - name: heavy-downloader
//	    expr: 'minor_targeted >= 5 && weighted_ratio > 0.5'
//	    score: 0.8
type Rule struct {
	// Name identifies the rule in evidence strings. Required.
	Name string `yaml:"name"`

	// Expr is a CEL boolean expression over the fact variables: age,
	// interactions, minor_targeted, weighted_ratio, connections,
	// max_age_gap.
	Expr string `yaml:"expr"`

	// Score is the signal value in [0,1] emitted when the rule matches.
	// Defaults to 1.0 when omitted.
	Score float64 `yaml:"score"`
}

// Validate checks the rule's fields without compiling the expression.
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.Expr == "" {
		return fmt.Errorf("rule %q: expression is required", r.Name)
	}
	if r.Score < 0 || r.Score > 1 {
		return fmt.Errorf("rule %q: score %v outside [0,1]", r.Name, r.Score)
	}
	return nil
}

// Facts are the per-user variables a rule expression can reference. The
// engine computes them once per adult user from the run's snapshot.
type Facts struct {
	// Age is the user's age in years.
	Age int

	// Interactions is the user's total interaction count.
	Interactions int

	// MinorTargeted is the user's count of interactions with
	// minor-targeted content.
	MinorTargeted int

	// WeightedRatio is the action-weighted minor-targeted consumption
	// ratio, or 0 when the user is below the interaction minimum.
	WeightedRatio float64

	// Connections is the user's degree in the graph.
	Connections int

	// MaxAgeGap is the largest adult-minor age gap on the user's flagged
	// connections, or 0 when none were flagged.
	MaxAgeGap int
}

// CompiledRule is a rule whose expression has been compiled once for the
// run. Evaluation is side-effect free and deterministic.
type CompiledRule struct {
	name  string
	score float64
	prg   cel.Program
}

// Name returns the rule's configured name.
func (c CompiledRule) Name() string { return c.name }

// Score returns the signal value emitted on a match.
func (c CompiledRule) Score() float64 { return c.score }

// Eval evaluates the rule against one user's facts.
func (c CompiledRule) Eval(f Facts) (bool, error) {
	out, _, err := c.prg.Eval(map[string]any{
		"age":            f.Age,
		"interactions":   f.Interactions,
		"minor_targeted": f.MinorTargeted,
		"weighted_ratio": f.WeightedRatio,
		"connections":    f.Connections,
		"max_age_gap":    f.MaxAgeGap,
	})
	if err != nil {
		return false, fmt.Errorf("rule %q: %w", c.name, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q: expression did not yield a boolean", c.name)
	}
	return matched, nil
}

// CompileRules compiles every rule in the list. Compilation happens once
// per run; a rule that fails to compile fails the whole list so a broken
// policy is caught before any user is scored.
func CompileRules(rules []Rule) ([]CompiledRule, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("age", cel.IntType),
		cel.Variable("interactions", cel.IntType),
		cel.Variable("minor_targeted", cel.IntType),
		cel.Variable("weighted_ratio", cel.DoubleType),
		cel.Variable("connections", cel.IntType),
		cel.Variable("max_age_gap", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule environment: %w", err)
	}

	compiled := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		ast, iss := env.Compile(r.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("rule %q: compile: %w", r.Name, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q: expression must yield bool, got %s", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %q: program: %w", r.Name, err)
		}
		score := r.Score
		if score == 0 {
			score = 1.0
		}
		compiled = append(compiled, CompiledRule{name: r.Name, score: score, prg: prg})
	}
	return compiled, nil
}
