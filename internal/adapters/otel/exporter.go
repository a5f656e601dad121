package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

const (
	serviceName    = "taskpulse"
	serviceVersion = "1.0.0"
)

// ErrDisabled is returned by NewExporter when export is not configured.
var ErrDisabled = errors.New("OTEL exporter is disabled or endpoint not configured")

// Exporter exports statistics engine health to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	eventsTotal   metric.Int64Counter
	opsFailed     metric.Int64Counter
	partialsTotal metric.Int64Counter
	retriesTotal  metric.Int64Counter
	applyDuration metric.Float64Histogram
}

// NewExporter creates an exporter pushing over OTLP/gRPC and installs it as
// the global meter provider.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, ErrDisabled
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	e, err := NewExporterWithReader(ctx, sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.Interval)))
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(e.provider)
	return e, nil
}

// NewExporterWithReader creates an exporter on an arbitrary reader.
func NewExporterWithReader(ctx context.Context, reader sdkmetric.Reader) (*Exporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	e := &Exporter{provider: provider}

	if e.eventsTotal, err = meter.Int64Counter(
		"taskpulse_events_applied_total",
		metric.WithDescription("Lifecycle events processed by the statistics engine"),
		metric.WithUnit("{event}"),
	); err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	if e.opsFailed, err = meter.Int64Counter(
		"taskpulse_ops_failed_total",
		metric.WithDescription("Counter operations that failed after retries"),
		metric.WithUnit("{op}"),
	); err != nil {
		return nil, fmt.Errorf("creating failed ops counter: %w", err)
	}

	if e.partialsTotal, err = meter.Int64Counter(
		"taskpulse_partial_apply_total",
		metric.WithDescription("Events whose counter operations were only partly applied"),
		metric.WithUnit("{event}"),
	); err != nil {
		return nil, fmt.Errorf("creating partial apply counter: %w", err)
	}

	if e.retriesTotal, err = meter.Int64Counter(
		"taskpulse_op_retries_total",
		metric.WithDescription("Retried counter store calls"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, fmt.Errorf("creating retries counter: %w", err)
	}

	if e.applyDuration, err = meter.Float64Histogram(
		"taskpulse_apply_duration_ms",
		metric.WithDescription("Time spent applying one lifecycle event"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return e, nil
}

func (e *Exporter) RecordEvent(ctx context.Context, kind domain.EventKind, ops int, outcome string, took time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("outcome", outcome),
	)
	e.eventsTotal.Add(ctx, 1, opt)
	e.applyDuration.Record(ctx, float64(took.Microseconds())/1000, opt)
}

func (e *Exporter) RecordOpFailure(ctx context.Context, op domain.Op) {
	e.opsFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("manager", string(op.Manager)),
		attribute.String("op", string(op.Kind)),
	))
}

func (e *Exporter) RecordPartialApply(ctx context.Context, kind domain.EventKind) {
	e.partialsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func (e *Exporter) RecordRetry(ctx context.Context, op domain.Op) {
	e.retriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("manager", string(op.Manager))))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
