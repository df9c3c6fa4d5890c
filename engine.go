package riskgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/graphsentry/riskgraph/assess"
	"github.com/graphsentry/riskgraph/extract"
	"github.com/graphsentry/riskgraph/graph"
	"github.com/graphsentry/riskgraph/metrics"
	"github.com/graphsentry/riskgraph/policy"
	"github.com/graphsentry/riskgraph/report"
	"github.com/graphsentry/riskgraph/signal"
	"github.com/graphsentry/riskgraph/structure"
)

// Engine orchestrates one analysis pipeline: snapshot, signal
// extraction, external metrics, aggregation, structure ranking, report
// assembly, and sink delivery. An Engine is safe for concurrent use;
// each Run works on its own immutable snapshot.
type Engine struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	pol      policy.Policy
	provider metrics.Provider
	sinks    []report.Sink
	rules    []policy.CompiledRule
}

// New creates an Engine with the given options. The policy is validated
// and all custom rules are compiled up front, so a broken configuration
// is caught before any analysis runs.
func New(opts ...Option) (*Engine, error) {
	cfg := engineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = noop.NewTracerProvider().Tracer("riskgraph")
	}
	if !cfg.polSet {
		cfg.pol = policy.Default()
	}

	if err := cfg.pol.Validate(); err != nil {
		return nil, &Error{
			Op:   "riskgraph.New",
			Kind: KindConfiguration,
			Err:  fmt.Errorf("%w: %v", ErrInvalidPolicy, err),
		}
	}

	rules := append(append([]policy.Rule(nil), cfg.pol.Rules...), cfg.rules...)
	compiled, err := policy.CompileRules(rules)
	if err != nil {
		return nil, &Error{
			Op:   "riskgraph.New",
			Kind: KindConfiguration,
			Err:  fmt.Errorf("%w: %v", ErrInvalidPolicy, err),
		}
	}

	return &Engine{
		logger:   cfg.logger,
		tracer:   cfg.tracer,
		pol:      cfg.pol,
		provider: cfg.provider,
		sinks:    cfg.sinks,
		rules:    compiled,
	}, nil
}

// Policy returns the engine's active policy.
func (e *Engine) Policy() policy.Policy {
	return e.pol
}

// Run executes one full analysis over the store's current state and
// returns the assembled report. Metrics provider failures degrade the
// run instead of failing it; the report is marked incomplete. Sink
// failures are joined into the returned error, but the report is always
// returned.
func (e *Engine) Run(ctx context.Context, store *graph.Store) (*report.Report, error) {
	runID := uuid.NewString()
	ctx, span := e.tracer.Start(ctx, "riskgraph.Run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	snap := store.Snapshot()
	logger := e.logger.With("run_id", runID)
	logger.Info("analysis started",
		"users", snap.UserCount(),
		"connections", snap.ConnectionCount(),
		"interactions", snap.InteractionCount())

	ageGap, content, clusters, temporal := e.extract(ctx, snap)
	custom := e.evalRules(ctx, snap, logger)
	set := e.computeMetrics(ctx, snap, logger)

	_, aggSpan := e.tracer.Start(ctx, "riskgraph.aggregate")
	assessments := assess.Aggregate(snap, assess.Inputs{
		AgeGap:   ageGap,
		Content:  content,
		Temporal: temporal,
		Custom:   custom,
		Metrics:  set,
	}, e.pol)
	structures := structure.Analyze(clusters, assessments, set)
	aggSpan.End()

	rep := report.Assemble(runID, time.Now().UTC(), snap, assessments, structures, set)

	err := e.deliver(ctx, rep, logger)

	logger.Info("analysis complete",
		"assessments", len(assessments),
		"structures", len(structures),
		"incomplete", rep.Incomplete)
	return rep, err
}

// extract runs the three built-in extractors. Each works on the same
// immutable snapshot, so they run concurrently.
func (e *Engine) extract(ctx context.Context, snap *graph.Snapshot) (ageGap, content []signal.Signal, clusters []extract.Cluster, temporal []signal.Signal) {
	_, span := e.tracer.Start(ctx, "riskgraph.extract")
	defer span.End()

	done := make(chan struct{}, 3)
	go func() {
		ageGap = extract.AgeGaps(snap, e.pol)
		done <- struct{}{}
	}()
	go func() {
		content, clusters = extract.ContentConsumption(snap, e.pol)
		done <- struct{}{}
	}()
	go func() {
		temporal = extract.TemporalPatterns(snap, e.pol)
		done <- struct{}{}
	}()
	for i := 0; i < 3; i++ {
		<-done
	}

	span.SetAttributes(
		attribute.Int("signals.age_gap", len(ageGap)),
		attribute.Int("signals.content", len(content)),
		attribute.Int("signals.temporal", len(temporal)),
		attribute.Int("clusters", len(clusters)),
	)
	return ageGap, content, clusters, temporal
}

// evalRules evaluates the compiled custom rules against each adult
// user's facts. A rule that errors on one user is logged and skipped for
// that user; it does not fail the run.
func (e *Engine) evalRules(ctx context.Context, snap *graph.Snapshot, logger *slog.Logger) []signal.Signal {
	if len(e.rules) == 0 {
		return nil
	}

	_, span := e.tracer.Start(ctx, "riskgraph.rules")
	defer span.End()

	facts := extract.RuleFacts(snap, e.pol)
	var out []signal.Signal
	for _, id := range snap.UserIDs() {
		f, ok := facts[id]
		if !ok {
			continue
		}
		for _, rule := range e.rules {
			matched, err := rule.Eval(f)
			if err != nil {
				logger.Warn("rule evaluation failed", "rule", rule.Name(), "user", id, "error", err)
				continue
			}
			if matched {
				out = append(out, signal.New(id, signal.SourceCustomRule, signal.Clamp(rule.Score()),
					fmt.Sprintf("rule %q matched", rule.Name())))
			}
		}
	}

	span.SetAttributes(attribute.Int("signals.custom", len(out)))
	return out
}

// computeMetrics asks the provider for graph metrics. A nil provider or
// a provider failure degrades the run to reduced confidence.
func (e *Engine) computeMetrics(ctx context.Context, snap *graph.Snapshot, logger *slog.Logger) *metrics.Set {
	if e.provider == nil {
		logger.Warn("no metrics provider configured, running with reduced confidence")
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "riskgraph.metrics")
	defer span.End()

	set, err := e.provider.Compute(ctx, snap)
	if err != nil {
		span.RecordError(err)
		logger.Warn("graph metrics unavailable, running with reduced confidence", "error", err)
		return nil
	}
	return set
}

// deliver writes the report to every configured sink. All sinks are
// attempted; failures are joined.
func (e *Engine) deliver(ctx context.Context, rep *report.Report, logger *slog.Logger) error {
	if len(e.sinks) == 0 {
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "riskgraph.deliver")
	defer span.End()

	var errs []error
	for _, sink := range e.sinks {
		if err := sink.Write(ctx, rep); err != nil {
			logger.Error("report delivery failed", "sink", fmt.Sprintf("%T", sink), "error", err)
			errs = append(errs, &Error{
				Op:      "Engine.Run",
				Kind:    KindDelivery,
				Err:     err,
				Context: map[string]any{"sink": fmt.Sprintf("%T", sink), "run_id": rep.RunID},
			})
		}
	}
	return errors.Join(errs...)
}
