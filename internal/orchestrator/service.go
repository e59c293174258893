package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"lingua/cmsinit/internal/cma"
	"lingua/cmsinit/internal/schema"
)

// ErrBootstrapInProgress is returned when RunBootstrap is called while a
// bootstrap is already running.
var ErrBootstrapInProgress = errors.New("bootstrap already in progress")

// Initializer is satisfied by *schema.Bootstrapper.
type Initializer interface {
	Initialize(ctx context.Context) (*schema.Run, error)
}

// Prober checks that a dependency is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error { return f(ctx) }

// Notifier is satisfied by *notify.Publisher.
type Notifier interface {
	NotifyPublished(ctx context.Context, ct cma.ContentType) error
	Probe(ctx context.Context) error
}

// Orchestrator runs bootstrap phases and health probes.
type Orchestrator struct {
	initializer Initializer
	management  Prober
	notifier    Notifier
	runs        metric.Int64Counter

	bootstrapInProgress atomic.Bool
	lastResult          *BootstrapResult
	resultMu            sync.RWMutex
}

// New constructs an Orchestrator. notifier may be nil, in which case the
// notify phase is always skipped and NATS is not probed.
func New(initializer Initializer, management Prober, notifier Notifier) *Orchestrator {
	runs, err := otel.Meter("lingua/cmsinit").Int64Counter("cmsinit.bootstrap.runs",
		metric.WithDescription("Completed bootstrap runs by status and outcome."))
	if err != nil {
		slog.Warn("creating bootstrap run counter failed", "err", err)
		runs = noop.Int64Counter{}
	}

	return &Orchestrator{
		initializer: initializer,
		management:  management,
		notifier:    notifier,
		runs:        runs,
	}
}

// RunBootstrap makes sure the content type exists and is published, waiting
// for an asynchronous create and publish to settle before it returns. Phase
// failures are recorded in the BootstrapResult (see BootstrapResult.Err);
// the returned error is only ErrBootstrapInProgress.
func (o *Orchestrator) RunBootstrap(ctx context.Context) (*BootstrapResult, error) {
	if !o.bootstrapInProgress.CompareAndSwap(false, true) {
		return nil, ErrBootstrapInProgress
	}
	defer o.bootstrapInProgress.Store(false)

	result := &BootstrapResult{
		Status:    StatusInProgress,
		Phases:    make(map[string]PhaseResult, 2),
		StartedAt: time.Now().UTC(),
	}

	ctx, span := otel.Tracer("lingua/cmsinit").Start(ctx, "cmsinit.bootstrap")
	defer span.End()

	slog.InfoContext(ctx, "bootstrap started")

	ct, outcome, err := o.ensureContentType(ctx)
	result.Outcome = string(outcome)
	result.record(ctx, PhaseContentType, err)
	if err == nil {
		result.ContentType = &ContentTypeSummary{
			ID:      ct.Sys.ID,
			Name:    ct.Name,
			Version: ct.Sys.Version,
			Status:  string(ct.Status()),
		}
	}

	switch {
	case o.notifier == nil, err != nil, outcome != schema.OutcomeCreated:
		result.skip(PhaseNotify)
	default:
		result.record(ctx, PhaseNotify, o.notifier.NotifyPublished(ctx, ct))
	}

	result.Status = StatusOK
	if result.err != nil {
		result.Status = StatusError
	}
	result.FinishedAt = time.Now().UTC()

	span.SetAttributes(
		attribute.String("bootstrap.status", result.Status),
		attribute.String("bootstrap.outcome", result.Outcome),
	)
	o.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", result.Status),
		attribute.String("outcome", result.Outcome),
	))
	if result.Status == StatusError {
		span.SetStatus(codes.Error, "one or more bootstrap phases failed")
		slog.WarnContext(ctx, "bootstrap completed with errors", "status", result.Status)
	} else {
		span.SetStatus(codes.Ok, "")
		slog.InfoContext(ctx, "bootstrap completed", "status", result.Status, "outcome", result.Outcome)
	}

	o.resultMu.Lock()
	o.lastResult = result
	o.resultMu.Unlock()

	return result, nil
}

func (o *Orchestrator) ensureContentType(ctx context.Context) (cma.ContentType, schema.Outcome, error) {
	run, err := o.initializer.Initialize(ctx)
	if err != nil {
		return cma.ContentType{}, "", err
	}
	ct, err := run.Wait(ctx)
	return ct, run.Outcome(), err
}

// RunDeepHealth probes the management API and, when configured, NATS.
func (o *Orchestrator) RunDeepHealth(ctx context.Context) map[string]ProbeResult {
	results := map[string]ProbeResult{
		"management": probe(ctx, "management", o.management),
	}
	if o.notifier != nil {
		results["nats"] = probe(ctx, "nats", o.notifier)
	}
	return results
}

// IsBootstrapInProgress returns true while a bootstrap run is active.
func (o *Orchestrator) IsBootstrapInProgress() bool {
	return o.bootstrapInProgress.Load()
}

// IsReady returns true if the last bootstrap completed with StatusOK.
func (o *Orchestrator) IsReady() bool {
	o.resultMu.RLock()
	defer o.resultMu.RUnlock()
	return o.lastResult != nil && o.lastResult.Status == StatusOK
}

// LastResult returns the result of the most recent completed bootstrap.
func (o *Orchestrator) LastResult() (*BootstrapResult, bool) {
	o.resultMu.RLock()
	defer o.resultMu.RUnlock()
	return o.lastResult, o.lastResult != nil
}

// record stores the phase outcome and keeps the first failure.
func (r *BootstrapResult) record(ctx context.Context, name string, err error) {
	phase := PhaseResult{Name: name, Status: StatusOK}
	if err != nil {
		phase.Status = StatusError
		phase.Error = err.Error()
		if kind := schema.KindOf(err); kind != 0 {
			phase.Kind = kind.String()
		}
		if r.err == nil {
			r.err = err
		}
	}
	logPhase(ctx, phase)
	r.Phases[name] = phase
}

func (r *BootstrapResult) skip(name string) {
	r.Phases[name] = PhaseResult{Name: name, Status: StatusSkipped}
}

// logPhase emits a trace-correlated log for a bootstrap phase result.
// Errors log at WARN so they are visible without being fatal.
func logPhase(ctx context.Context, p PhaseResult) {
	if p.Status == StatusOK {
		slog.InfoContext(ctx, "bootstrap phase ok", "phase", p.Name)
		return
	}
	slog.WarnContext(ctx, "bootstrap phase failed", "phase", p.Name, "kind", p.Kind, "error", p.Error)
}

// probe runs p and converts the outcome to a ProbeResult.
func probe(ctx context.Context, name string, p Prober) ProbeResult {
	start := time.Now()
	err := p.Probe(ctx)
	latency := time.Since(start).Milliseconds()

	if err == nil {
		return ProbeResult{Name: name, OK: true, LatencyMs: latency}
	}

	errMsg := err.Error()
	if errors.Is(err, gobreaker.ErrOpenState) {
		errMsg = "circuit open"
	}
	return ProbeResult{Name: name, OK: false, LatencyMs: latency, Error: errMsg}
}
