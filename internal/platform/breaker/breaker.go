// Package breaker guards calls to a backing collaborator (storage, cache)
// with a circuit breaker, an OpenTelemetry span, and operation metrics.
//
// Construction:
//
//	b := breaker.New(&cfg.Storage.CircuitBreaker, "storage", metrics, logger)
//
// Guarding a call that returns a value:
//
//	p, err := breaker.Execute(ctx, b, "product.get", func(ctx context.Context) (product.Product, error) {
//		return repo.Get(ctx, id)
//	})
//
// When the circuit is open the call is rejected without reaching the
// collaborator and the returned error wraps domain.ErrUnavailable.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/platform/config"
	"github.com/jsamuelsen11/storefront-service/internal/platform/telemetry"
)

// Metric result values.
const (
	resultSuccess     = "success"
	resultError       = "error"
	resultCircuitOpen = "circuit_open"
)

// Breaker is a named circuit breaker with tracing and metrics.
type Breaker struct {
	name    string
	cb      *gobreaker.CircuitBreaker[struct{}]
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// New creates a Breaker for the collaborator identified by name (e.g.,
// "storage", "cache"). If metrics is nil, metric recording is skipped.
//
// Domain outcomes (not found, conflict, validation) and caller cancellation
// are not collaborator faults and never count towards tripping the circuit.
func New(cfg *config.CircuitBreakerConfig, name string, metrics *telemetry.Metrics, logger *slog.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: toUint32(cfg.HalfOpenLimit),
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isExpected(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Breaker{
		name:    name,
		cb:      cb,
		metrics: metrics,
		logger:  logger,
	}
}

// Execute runs fn through the breaker and returns its result. The operation
// names the span and the metric attribute (e.g., "product.list").
func Execute[T any](ctx context.Context, b *Breaker, operation string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()

	var out T
	_, err := b.cb.Execute(func() (struct{}, error) {
		spanCtx, span := b.startSpan(ctx, operation)
		defer span.End()

		var callErr error
		out, callErr = fn(spanCtx)
		finishSpan(span, callErr)

		return struct{}{}, callErr
	})

	b.recordMetrics(ctx, operation, start, err)

	if isRejected(err) {
		var zero T
		return zero, fmt.Errorf("%s %s: %w: %w", b.name, operation, domain.ErrUnavailable, err)
	}
	return out, err
}

// Do is Execute for calls that only return an error.
func Do(ctx context.Context, b *Breaker, operation string, fn func(context.Context) error) error {
	_, err := Execute(ctx, b, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Name returns the guarded collaborator identifier. Together with
// HealthCheck it satisfies ports.HealthChecker.
func (b *Breaker) Name() string {
	return b.name
}

// HealthCheck reports collaborator availability from the breaker state; no
// call is made.
//
// State mapping:
//   - "closed":    operating normally; returns nil.
//   - "half-open": probing recovery; returns a degraded error.
//   - "open":      calls are being rejected; returns a failing error.
func (b *Breaker) HealthCheck(_ context.Context) error {
	state := b.cb.State()
	switch state {
	case gobreaker.StateClosed:
		return nil
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded (circuit breaker half-open)", b.name)
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing (circuit breaker open)", b.name)
	default:
		return fmt.Errorf("%s: unknown circuit breaker state %v", b.name, state)
	}
}

func (b *Breaker) startSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer("breaker")

	return tracer.Start(ctx, b.name+" "+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", b.name),
			attribute.String("operation", operation),
		),
	)
}

// finishSpan marks the span as failed for collaborator faults only.
func finishSpan(span trace.Span, err error) {
	if err == nil || isExpected(err) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// recordMetrics is called outside the breaker so that rejections are
// captured. Safe to call with nil metrics.
func (b *Breaker) recordMetrics(ctx context.Context, operation string, start time.Time, err error) {
	if b.metrics == nil {
		return
	}

	result := resultSuccess
	switch {
	case isRejected(err):
		result = resultCircuitOpen
	case err != nil && !isExpected(err):
		result = resultError
	}

	attrs := metric.WithAttributes(
		telemetry.AttrPeerService.String(b.name),
		telemetry.AttrOperation.String(operation),
		telemetry.AttrResult.String(result),
	)

	b.metrics.StorageOperationDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	b.metrics.StorageOperationTotal.Add(ctx, 1, attrs)
}

func isRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func isExpected(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, context.Canceled)
}

// toUint32 safely converts a non-negative int to uint32, clamping at the
// uint32 maximum. Negative values are treated as zero.
func toUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
