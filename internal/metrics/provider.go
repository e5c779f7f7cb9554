// Package metrics instruments the token service with OpenTelemetry and exports it in
// Prometheus format. It counts and times token operations and revocation sweeps, records
// per-route HTTP metrics for the /v1/tokens API, and provides Measure, which logs how long
// key fetches and sweeps took.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Provider owns the meter provider behind every token service metric and the registry
// the metrics server scrapes.
type Provider struct {
	meterProvider *metric.MeterProvider
	exporter      *promexporter.Exporter
	registry      *prometheus.Registry
	namespace     string
}

// NewProvider builds a provider exporting into a private registry. namespace is
// METRICS_NAMESPACE; it prefixes metric names and is reported as service.name.
func NewProvider(namespace string) (*Provider, error) {
	registry := prometheus.NewRegistry()
	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	// The namespace doubles as service.name on the target_info series.
	res := resource.NewSchemaless(attribute.String("service.name", namespace))

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)

	return &Provider{
		meterProvider: meterProvider,
		exporter:      exporter,
		registry:      registry,
		namespace:     namespace,
	}, nil
}

// Handler serves the registry in OpenMetrics format. It is mounted at /metrics on the
// metrics server, never on the token API.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Namespace returns the metric name prefix the provider was created with.
func (p *Provider) Namespace() string {
	return p.namespace
}

// MeterProvider is used by the business and HTTP metrics recorders.
func (p *Provider) MeterProvider() *metric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes the meter provider. The container calls it after both servers stop.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
