package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation records a span and metrics for every exchange. A nil
// *Instrumentation records nothing.
type Instrumentation struct {
	tracer  trace.Tracer
	metrics *Metrics
}

type instrumentOptions struct {
	tp trace.TracerProvider
	mp metric.MeterProvider
}

// InstrumentOption configures NewInstrumentation.
type InstrumentOption func(*instrumentOptions)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) InstrumentOption {
	return func(o *instrumentOptions) { o.tp = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) InstrumentOption {
	return func(o *instrumentOptions) { o.mp = mp }
}

// NewInstrumentation builds instruments from the global providers unless
// overridden.
func NewInstrumentation(opts ...InstrumentOption) (*Instrumentation, error) {
	o := instrumentOptions{
		tp: otel.GetTracerProvider(),
		mp: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	metrics, err := NewMetrics(o.mp.Meter(InstrumentationName))
	if err != nil {
		return nil, err
	}
	return &Instrumentation{
		tracer:  o.tp.Tracer(InstrumentationName),
		metrics: metrics,
	}, nil
}

// CallInfo describes an exchange about to start.
type CallInfo struct {
	Service   string
	RequestID string
	Method    string
	Path      string
	Host      string
	Port      int
	Protocol  string
}

// Call is an exchange in flight.
type Call struct {
	ctx     context.Context
	span    trace.Span
	metrics *Metrics
	info    CallInfo
	start   time.Time
}

// Start opens a client span and counts the exchange as in flight.
func (i *Instrumentation) Start(ctx context.Context, info CallInfo) (context.Context, *Call) {
	if i == nil {
		return ctx, nil
	}
	ctx, span := i.tracer.Start(ctx, SpanSend,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrServiceName, info.Service),
			attribute.String(AttrRequestID, info.RequestID),
			attribute.String(AttrMethod, info.Method),
			attribute.String(AttrPath, info.Path),
			attribute.String(AttrHost, info.Host),
			attribute.Int(AttrPort, info.Port),
			attribute.String(AttrProtocol, info.Protocol),
		),
	)
	i.metrics.RecordStart(ctx, info.Service)
	return ctx, &Call{ctx: ctx, span: span, metrics: i.metrics, info: info, start: time.Now()}
}

// End closes the span. A nil err records a completed exchange with its
// status code; otherwise errType classifies the failure.
func (c *Call) End(status int, errType string, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
		c.span.SetAttributes(attribute.String(AttrErrorType, errType))
		c.metrics.RecordError(c.ctx, c.info.Service, c.info.Method, errType)
	} else {
		c.span.SetAttributes(attribute.Int(AttrStatusCode, status))
		if status >= 500 {
			c.span.SetStatus(codes.Error, "")
		}
		c.metrics.RecordEnd(c.ctx, c.info.Service, c.info.Method, status, time.Since(c.start))
	}
	c.span.End()
}
