package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/weld/errors"
	"github.com/kbukum/weld/logger"
	"github.com/kbukum/weld/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// Enabled turns on the OTLP exporter in Setup.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Short(),
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(newResource(config.ServiceName, config.ServiceVersion, config.Environment)),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return otel.Meter(name, opts...)
}

// Metric names.
const (
	MetricConstructTotal    = "di.construct.total"
	MetricConstructDuration = "di.construct.duration"
	MetricErrorTotal        = "di.error.total"
)

// ContainerMetrics holds the instruments recorded while the container builds
// instances. A nil *ContainerMetrics records nothing.
type ContainerMetrics struct {
	constructTotal    metric.Int64Counter
	constructDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewContainerMetrics creates the container instruments on meter.
func NewContainerMetrics(meter metric.Meter) (*ContainerMetrics, error) {
	constructTotal, err := meter.Int64Counter(MetricConstructTotal,
		metric.WithDescription("Total number of instance constructions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricConstructTotal, err)
	}

	constructDuration, err := meter.Float64Histogram(MetricConstructDuration,
		metric.WithDescription("Duration of instance constructions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricConstructDuration, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Total container errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}

	return &ContainerMetrics{
		constructTotal:    constructTotal,
		constructDuration: constructDuration,
		errorTotal:        errorTotal,
	}, nil
}

// RecordConstruct records one construction attempt of typeName. A non-nil
// err marks it failed and also counts the error by code.
func (m *ContainerMetrics) RecordConstruct(ctx context.Context, typeName, scope string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.constructTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrType, typeName),
		attribute.String(AttrScope, scope),
		attribute.String(AttrStatus, status),
	))
	m.constructDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrType, typeName),
		attribute.String(AttrScope, scope),
	))
	if err != nil {
		m.RecordError(ctx, err)
	}
}

// RecordError counts err under its error code.
func (m *ContainerMetrics) RecordError(ctx context.Context, err error) {
	if m == nil || err == nil {
		return
	}
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorCode, code),
	))
}
