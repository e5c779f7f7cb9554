package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Label values shared by every recorder of token service metrics.
const (
	DomainTokens  = "tokens"
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusOf maps the outcome of a token operation to its status label.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// BusinessMetrics records what the token service does: one counter and one latency
// histogram per (domain, operation, status), plus an item counter for the revocation
// sweeper. Operations are token_issue, token_verify, token_verify_opaque, token_revoke,
// token_revocation_check and revocation_sweep.
type BusinessMetrics interface {
	// RecordOperation counts one token operation under its status label.
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes how long a token operation took, in seconds. Failed
	// verifications land under status "error" so rejection latency stays visible.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordItems adds count to the number of items processed by a batch operation,
	// such as the revoked tokens removed by a sweep.
	RecordItems(ctx context.Context, domain, operation string, count int64)
}

// businessMetrics implements BusinessMetrics using OpenTelemetry metrics.
type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	itemsCounter     metric.Int64Counter
}

// NewBusinessMetrics registers {namespace}_operations_total,
// {namespace}_operation_duration_seconds and {namespace}_processed_items_total on
// meterProvider. The namespace comes from METRICS_NAMESPACE.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of token service operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of token service operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	itemsCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_processed_items_total", namespace),
		metric.WithDescription("Total number of revoked tokens removed by sweeps"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create items counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		itemsCounter:     itemsCounter,
	}, nil
}

// RecordOperation increments the operation counter with domain, operation, and status labels.
func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the operation duration in seconds with domain, operation, and status labels.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordItems adds count to the items counter. Non-positive counts are ignored.
func (b *businessMetrics) RecordItems(ctx context.Context, domain, operation string, count int64) {
	if count <= 0 {
		return
	}
	b.itemsCounter.Add(ctx, count,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
		),
	)
}

// NoOpBusinessMetrics is handed to the revocation sweeper when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	// No-op
}

// RecordDuration does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	// No-op
}

// RecordItems does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordItems(ctx context.Context, domain, operation string, count int64) {}
