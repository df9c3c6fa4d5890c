package riskgraph

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/graphsentry/riskgraph/metrics"
	"github.com/graphsentry/riskgraph/policy"
	"github.com/graphsentry/riskgraph/report"
)

// Option configures the Engine.
type Option func(*engineConfig)

// engineConfig holds configuration for an Engine instance.
type engineConfig struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	pol      policy.Policy
	polSet   bool
	provider metrics.Provider
	sinks    []report.Sink
	rules    []policy.Rule
}

// WithLogger sets a custom logger for the engine.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for distributed tracing.
// If not provided, a no-op tracer is used.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *engineConfig) {
		c.tracer = tracer
	}
}

// WithPolicy sets the analysis policy.
// If not provided, policy.Default() is used.
func WithPolicy(pol policy.Policy) Option {
	return func(c *engineConfig) {
		c.pol = pol
		c.polSet = true
	}
}

// WithMetricsProvider sets the external graph metrics provider.
// Without a provider, assessments are produced with reduced confidence
// and no centrality signal.
func WithMetricsProvider(p metrics.Provider) Option {
	return func(c *engineConfig) {
		c.provider = p
	}
}

// WithSinks adds report sinks. Every sink receives each assembled
// report; a failing sink does not prevent delivery to the others.
func WithSinks(sinks ...report.Sink) Option {
	return func(c *engineConfig) {
		c.sinks = append(c.sinks, sinks...)
	}
}

// WithRules adds custom CEL rules on top of the rules carried by the
// policy. Rules are compiled when the engine is created.
func WithRules(rules ...policy.Rule) Option {
	return func(c *engineConfig) {
		c.rules = append(c.rules, rules...)
	}
}
