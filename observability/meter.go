package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/registryd/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on process exit.
func InitMeter(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the registry's metric instruments. A nil *Metrics is valid:
// every recording method is a no-op on a nil receiver, so the registry can
// run with observability disabled.
type Metrics struct {
	registrations   metric.Int64Counter
	keepAlives      metric.Int64Counter
	deregistrations metric.Int64Counter
	resolutions     metric.Int64Counter
	pruneEvictions  metric.Int64Counter
	clusters        metric.Int64Gauge
}

// NewMetrics creates the registry metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	registrations, err := meter.Int64Counter("registry.registrations.total",
		metric.WithDescription("Total number of entry registrations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registrations counter: %w", err)
	}

	keepAlives, err := meter.Int64Counter("registry.keepalives.total",
		metric.WithDescription("Total number of keep-alive signals"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating keepalives counter: %w", err)
	}

	deregistrations, err := meter.Int64Counter("registry.deregistrations.total",
		metric.WithDescription("Total number of explicit entry removals"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating deregistrations counter: %w", err)
	}

	resolutions, err := meter.Int64Counter("registry.resolutions.total",
		metric.WithDescription("Total number of resolved lookups"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resolutions counter: %w", err)
	}

	pruneEvictions, err := meter.Int64Counter("registry.prune.evictions.total",
		metric.WithDescription("Total number of entries evicted by the prune cycle"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating prune evictions counter: %w", err)
	}

	clusters, err := meter.Int64Gauge("registry.clusters",
		metric.WithDescription("Current number of live clusters"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating clusters gauge: %w", err)
	}

	return &Metrics{
		registrations:   registrations,
		keepAlives:      keepAlives,
		deregistrations: deregistrations,
		resolutions:     resolutions,
		pruneEvictions:  pruneEvictions,
		clusters:        clusters,
	}, nil
}

// RecordRegistration counts one registration for (name, version).
func (m *Metrics) RecordRegistration(name, version string) {
	if m == nil {
		return
	}
	m.registrations.Add(context.Background(), 1, serviceAttrs(name, version))
}

// RecordKeepAlive counts one keep-alive for (name, version).
func (m *Metrics) RecordKeepAlive(name, version string) {
	if m == nil {
		return
	}
	m.keepAlives.Add(context.Background(), 1, serviceAttrs(name, version))
}

// RecordDeregistration counts one explicit removal for (name, version).
func (m *Metrics) RecordDeregistration(name, version string) {
	if m == nil {
		return
	}
	m.deregistrations.Add(context.Background(), 1, serviceAttrs(name, version))
}

// RecordResolution counts one resolved lookup for name and expression.
func (m *Metrics) RecordResolution(name, expression string) {
	if m == nil {
		return
	}
	m.resolutions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("service", name),
		attribute.String("expression", expression),
	))
}

// RecordPruneEvictions counts entries evicted by one prune cycle.
func (m *Metrics) RecordPruneEvictions(count int) {
	if m == nil {
		return
	}
	m.pruneEvictions.Add(context.Background(), int64(count))
}

// SetClusters records the current cluster count.
func (m *Metrics) SetClusters(count int) {
	if m == nil {
		return
	}
	m.clusters.Record(context.Background(), int64(count))
}

func serviceAttrs(name, version string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("service", name),
		attribute.String("version", version),
	)
}
