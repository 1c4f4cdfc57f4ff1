package interfaces

// Tracer represents the tracing capability consumed by the waterfall
// instrumentation. Implementations live in pkg/tracing.
type Tracer interface {
	// StartSpan opens a span with the given name. A nil parent lets the
	// backend pick its own default, usually a new root span.
	StartSpan(name string, parent Span) Span
}

// Span represents a span in a trace
type Span interface {
	// AddTags merges the given key/value pairs onto the span's tag set
	AddTags(tags map[string]interface{})

	// SetTag sets a single tag on the span
	SetTag(key string, value interface{})

	// Finish marks the span's end
	Finish()
}

// Well-known tag keys every backend understands.
const (
	// TagError marks a span as failed (boolean).
	TagError = "error"

	// TagSamplingPriority forces span retention when set to 1 (numeric).
	TagSamplingPriority = "sampling.priority"
)
