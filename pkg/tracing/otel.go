package tracing

import (
	"context"
	"fmt"

	"github.com/tracefall/tracefall/pkg/interfaces"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelTracer implements interfaces.Tracer using OpenTelemetry
type OTelTracer struct {
	tracer      trace.Tracer
	enabled     bool
	serviceName string
}

// NewOTelTracer creates a new OpenTelemetry tracer exporting over OTLP
// gRPC. A disabled config yields a tracer that opens no spans.
func NewOTelTracer(config OTelConfig) (*OTelTracer, error) {
	if !config.Enabled {
		return &OTelTracer{
			enabled: false,
		}, nil
	}

	// Create exporter
	ctx := context.Background()
	exporter, err := otlptrace.New(
		ctx,
		otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(config.CollectorEndpoint),
			otlptracegrpc.WithInsecure(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	// Create resource
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create trace provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &OTelTracer{
		tracer:      tp.Tracer(config.ServiceName),
		enabled:     true,
		serviceName: config.ServiceName,
	}, nil
}

// WrapOTel adapts an existing OpenTelemetry tracer. Useful when the host
// application already owns a tracer provider.
func WrapOTel(tracer trace.Tracer) *OTelTracer {
	return &OTelTracer{
		tracer:  tracer,
		enabled: true,
	}
}

// StartSpan opens a span, parented under the given span when it came from
// this backend. A disabled tracer returns nil.
func (t *OTelTracer) StartSpan(name string, parent interfaces.Span) interfaces.Span {
	if !t.enabled {
		return nil
	}

	ctx := context.Background()
	if p, ok := parent.(*OTelSpan); ok && p != nil {
		ctx = trace.ContextWithSpan(ctx, p.span)
	}
	_, span := t.tracer.Start(ctx, name)
	return &OTelSpan{span: span}
}

// OTelSpan adapts an OpenTelemetry span to interfaces.Span
type OTelSpan struct {
	span trace.Span
}

// Span exposes the underlying OpenTelemetry span, letting traceable step
// handlers open nested spans with the native API.
func (s *OTelSpan) Span() trace.Span {
	return s.span
}

// AddTags merges the given tags onto the span as attributes
func (s *OTelSpan) AddTags(tags map[string]interface{}) {
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for k, v := range tags {
		attrs = append(attrs, anyAttribute(k, v))
	}
	s.span.SetAttributes(attrs...)
}

// SetTag sets a single tag. The well-known error tag additionally marks
// the span status as failed.
func (s *OTelSpan) SetTag(key string, value interface{}) {
	if key == interfaces.TagError {
		if b, ok := value.(bool); ok && b {
			s.span.SetStatus(codes.Error, "")
		}
	}
	s.span.SetAttributes(anyAttribute(key, value))
}

// Finish ends the span
func (s *OTelSpan) Finish() {
	s.span.End()
}

func anyAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
