package tracing

import (
	ot "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/tracefall/tracefall/pkg/interfaces"
)

// OpenTracingTracer implements interfaces.Tracer on top of an
// opentracing-go tracer.
type OpenTracingTracer struct {
	tracer ot.Tracer
}

// NewOpenTracingTracer creates a new OpenTracing-backed tracer. A nil
// argument falls back to the registered global tracer.
func NewOpenTracingTracer(tracer ot.Tracer) *OpenTracingTracer {
	if tracer == nil {
		tracer = ot.GlobalTracer()
	}
	return &OpenTracingTracer{tracer: tracer}
}

// StartSpan opens a span with a ChildOf reference to the given parent when
// it came from this backend.
func (t *OpenTracingTracer) StartSpan(name string, parent interfaces.Span) interfaces.Span {
	var opts []ot.StartSpanOption
	if p, ok := parent.(*OpenTracingSpan); ok && p != nil {
		opts = append(opts, ot.ChildOf(p.span.Context()))
	}
	return &OpenTracingSpan{span: t.tracer.StartSpan(name, opts...)}
}

// OpenTracingSpan adapts an opentracing-go span to interfaces.Span
type OpenTracingSpan struct {
	span ot.Span
}

// Span exposes the underlying opentracing span, letting traceable step
// handlers open nested spans with the native API.
func (s *OpenTracingSpan) Span() ot.Span {
	return s.span
}

// AddTags merges the given tags onto the span
func (s *OpenTracingSpan) AddTags(tags map[string]interface{}) {
	for k, v := range tags {
		s.setTag(k, v)
	}
}

// SetTag sets a single tag on the span
func (s *OpenTracingSpan) SetTag(key string, value interface{}) {
	s.setTag(key, value)
}

// setTag routes the well-known keys through the opentracing ext helpers so
// their values carry the types downstream tracers expect.
func (s *OpenTracingSpan) setTag(key string, value interface{}) {
	switch key {
	case interfaces.TagError:
		if b, ok := value.(bool); ok {
			ext.Error.Set(s.span, b)
			return
		}
	case interfaces.TagSamplingPriority:
		if n, ok := value.(int); ok {
			ext.SamplingPriority.Set(s.span, uint16(n))
			return
		}
	}
	s.span.SetTag(key, value)
}

// Finish ends the span
func (s *OpenTracingSpan) Finish() {
	s.span.Finish()
}
