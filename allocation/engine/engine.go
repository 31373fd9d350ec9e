package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/LerianStudio/lib-allocation/allocation/assert"
	"github.com/LerianStudio/lib-allocation/allocation/installment"
	"github.com/LerianStudio/lib-allocation/allocation/layaway"
	"github.com/LerianStudio/lib-allocation/allocation/split"
)

const (
	tracerName      = "github.com/LerianStudio/lib-allocation/allocation/engine"
	defaultCacheTTL = 24 * time.Hour

	splitKeyPrefix    = "allocation:split:"
	scheduleKeyPrefix = "allocation:schedule:"
	layawayKeyPrefix  = "allocation:layaway:"
)

// Engine orchestrates the pure calculators with logging, tracing, and
// result caching. The zero-value options produce an engine that only
// computes: nop logger, global tracer provider, no cache.
type Engine struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	cache    Cache
	cacheTTL time.Duration
	asserter *assert.Asserter
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger used for audit records.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for computation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithCache enables idempotency-reference caching of results. A
// non-positive ttl falls back to the default of 24 hours.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = cache
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
		cacheTTL: defaultCacheTTL,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.asserter = assert.New(e.logger, "engine")

	return e
}

// ComputeSplit runs the split calculator for the request. When reference is
// non-empty and a cache is configured, a previously computed outcome for the
// same reference is returned as-is.
func (e *Engine) ComputeSplit(ctx context.Context, reference string, req split.Request) (split.Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ComputeSplit", trace.WithAttributes(
		attribute.String("allocation.reference", reference),
		attribute.String("allocation.currency", req.Currency),
		attribute.String("allocation.total", req.TotalAmount.String()),
		attribute.Int("allocation.rules", len(req.Rules)),
	))
	defer span.End()

	var cached split.Outcome
	if e.fromCache(ctx, span, splitKeyPrefix+reference, reference, &cached) {
		return cached, nil
	}

	outcome, err := split.Compute(req)
	if err != nil {
		e.recordFailure(ctx, span, "split rejected", reference, err)
		return split.Outcome{}, err
	}

	if outcome.Reconciled {
		err = e.asserter.That(ctx, outcome.TotalCalculated.Equal(req.TotalAmount),
			"ComputeSplit", "reconciled outcome must sum to the request total",
			zap.String("total", req.TotalAmount.String()),
			zap.String("calculated", outcome.TotalCalculated.String()),
		)
		if err != nil {
			return split.Outcome{}, err
		}
	}

	e.audit(ctx, "split computed", reference,
		zap.Bool("reconciled", outcome.Reconciled),
		zap.String("total", outcome.TotalCalculated.String()),
		zap.Int("recipients", len(outcome.PerRecipient)),
	)
	e.toCache(ctx, splitKeyPrefix+reference, reference, outcome)

	return outcome, nil
}

// ComputeSchedule runs the installment scheduler for the request, with the
// same reference-based caching as ComputeSplit.
func (e *Engine) ComputeSchedule(ctx context.Context, reference string, req installment.Request) ([]installment.Entry, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ComputeSchedule", trace.WithAttributes(
		attribute.String("allocation.reference", reference),
		attribute.String("allocation.principal", req.Principal.String()),
		attribute.Int("allocation.installments", req.InstallmentCount),
	))
	defer span.End()

	var cached []installment.Entry
	if e.fromCache(ctx, span, scheduleKeyPrefix+reference, reference, &cached) {
		return cached, nil
	}

	entries, err := installment.ComputeSchedule(req)
	if err != nil {
		e.recordFailure(ctx, span, "schedule rejected", reference, err)
		return nil, err
	}

	financed := req.Principal.Sub(req.DownPayment)
	principalSum := decimal.Zero
	for _, entry := range entries {
		principalSum = principalSum.Add(entry.PrincipalPortion)
	}

	err = e.asserter.That(ctx, principalSum.Equal(financed),
		"ComputeSchedule", "principal portions must sum to the financed principal",
		zap.String("financed", financed.String()),
		zap.String("sum", principalSum.String()),
	)
	if err != nil {
		return nil, err
	}

	e.audit(ctx, "schedule computed", reference,
		zap.Int("periods", len(entries)),
		zap.String("financed", financed.String()),
	)
	e.toCache(ctx, scheduleKeyPrefix+reference, reference, entries)

	return entries, nil
}

// ComputePlan runs the layaway planner for the request, with the same
// reference-based caching as ComputeSplit.
func (e *Engine) ComputePlan(ctx context.Context, reference string, req layaway.Request) (layaway.Plan, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ComputePlan", trace.WithAttributes(
		attribute.String("allocation.reference", reference),
		attribute.String("allocation.total", req.TotalAmount.String()),
	))
	defer span.End()

	var cached layaway.Plan
	if e.fromCache(ctx, span, layawayKeyPrefix+reference, reference, &cached) {
		return cached, nil
	}

	plan, err := layaway.ComputePlan(req)
	if err != nil {
		e.recordFailure(ctx, span, "plan rejected", reference, err)
		return layaway.Plan{}, err
	}

	err = e.asserter.That(ctx, plan.RequiredDeposit.Add(plan.RemainingAmount).Equal(req.TotalAmount),
		"ComputePlan", "deposit and remaining amount must sum to the total",
		zap.String("total", req.TotalAmount.String()),
	)
	if err != nil {
		return layaway.Plan{}, err
	}

	e.audit(ctx, "plan computed", reference,
		zap.String("deposit", plan.RequiredDeposit.String()),
		zap.String("remaining", plan.RemainingAmount.String()),
	)
	e.toCache(ctx, layawayKeyPrefix+reference, reference, plan)

	return plan, nil
}

// fromCache loads a previously computed result into out. Lookup failures are
// logged and treated as a miss.
func (e *Engine) fromCache(ctx context.Context, span trace.Span, key, reference string, out any) bool {
	if e.cache == nil || reference == "" {
		return false
	}

	raw, found, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("result cache lookup failed", zap.String("reference", reference), zap.Error(err))
		return false
	}

	if !found {
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		e.logger.Warn("cached result is unreadable", zap.String("reference", reference), zap.Error(err))
		return false
	}

	span.AddEvent("cache.hit")

	return true
}

// toCache stores a computed result. Failures are logged and ignored: the
// cache is an optimization, never a dependency.
func (e *Engine) toCache(ctx context.Context, key, reference string, value any) {
	if e.cache == nil || reference == "" {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		e.logger.Warn("result not cacheable", zap.String("reference", reference), zap.Error(err))
		return
	}

	if err := e.cache.Set(ctx, key, raw, e.cacheTTL); err != nil {
		e.logger.Warn("result cache store failed", zap.String("reference", reference), zap.Error(err))
	}
}

func (e *Engine) recordFailure(ctx context.Context, span trace.Span, msg, reference string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	e.logger.Warn(msg, auditFields(ctx, reference, zap.Error(err))...)
}

func (e *Engine) audit(ctx context.Context, msg, reference string, fields ...zap.Field) {
	e.logger.Info(msg, auditFields(ctx, reference, fields...)...)
}

// auditFields stamps every audit record with a fresh id, the caller's
// idempotency reference, and the active trace identifiers so log entries
// correlate with distributed traces.
func auditFields(ctx context.Context, reference string, fields ...zap.Field) []zap.Field {
	logFields := append([]zap.Field{
		zap.String("audit_id", uuid.NewString()),
		zap.String("reference", reference),
	}, fields...)

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		logFields = append(logFields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	return logFields
}
