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

	"github.com/kbukum/httpservice/logger"
	"github.com/kbukum/httpservice/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name reported for the process.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion defaults to the build version.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain HTTP to the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// The returned provider should be shut down on exit.
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

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
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
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names.
const (
	MetricExchangeTotal    = "httpservice.exchange.total"
	MetricExchangeDuration = "httpservice.exchange.duration"
	MetricExchangeActive   = "httpservice.exchange.active"
	MetricErrorTotal       = "httpservice.error.total"
)

// Metrics holds the instruments recorded for each exchange.
type Metrics struct {
	exchangeTotal    metric.Int64Counter
	exchangeDuration metric.Float64Histogram
	exchangeActive   metric.Int64UpDownCounter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	exchangeTotal, err := meter.Int64Counter(MetricExchangeTotal,
		metric.WithDescription("Completed request/response exchanges"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricExchangeTotal, err)
	}

	exchangeDuration, err := meter.Float64Histogram(MetricExchangeDuration,
		metric.WithDescription("Duration of exchanges in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricExchangeDuration, err)
	}

	exchangeActive, err := meter.Int64UpDownCounter(MetricExchangeActive,
		metric.WithDescription("Exchanges in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricExchangeActive, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Failed exchanges by error type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}

	return &Metrics{
		exchangeTotal:    exchangeTotal,
		exchangeDuration: exchangeDuration,
		exchangeActive:   exchangeActive,
		errorTotal:       errorTotal,
	}, nil
}

// RecordStart increments the in-flight count.
func (m *Metrics) RecordStart(ctx context.Context, service string) {
	m.exchangeActive.Add(ctx, 1, metric.WithAttributes(attribute.String("service", service)))
}

// RecordEnd decrements the in-flight count and records a completed exchange.
func (m *Metrics) RecordEnd(ctx context.Context, service, method string, status int, duration time.Duration) {
	svc := attribute.String("service", service)
	m.exchangeActive.Add(ctx, -1, metric.WithAttributes(svc))
	m.exchangeTotal.Add(ctx, 1, metric.WithAttributes(
		svc,
		attribute.String("method", method),
		attribute.Int("status", status),
	))
	m.exchangeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		svc,
		attribute.String("method", method),
	))
}

// RecordError decrements the in-flight count and counts a failed exchange.
func (m *Metrics) RecordError(ctx context.Context, service, method, errType string) {
	svc := attribute.String("service", service)
	m.exchangeActive.Add(ctx, -1, metric.WithAttributes(svc))
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		svc,
		attribute.String("method", method),
		attribute.String("type", errType),
	))
}
