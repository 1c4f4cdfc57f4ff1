package tracing

import (
	"sync"

	"github.com/google/uuid"
	"github.com/tracefall/tracefall/pkg/interfaces"
)

// RecordedSpan is a span captured by a Recorder. Spans are not safe for
// concurrent modification; waterfall execution is single-threaded.
type RecordedSpan struct {
	TraceID  string
	SpanID   string
	Name     string
	Parent   *RecordedSpan
	Tags     map[string]interface{}
	Finished bool
}

// AddTags merges the given tags onto the span
func (s *RecordedSpan) AddTags(tags map[string]interface{}) {
	for k, v := range tags {
		s.Tags[k] = v
	}
}

// SetTag sets a single tag on the span
func (s *RecordedSpan) SetTag(key string, value interface{}) {
	s.Tags[key] = value
}

// Finish marks the span as finished
func (s *RecordedSpan) Finish() {
	s.Finished = true
}

// Recorder is an in-memory Tracer that keeps every span it opens, in open
// order. Intended for tests and local debugging.
type Recorder struct {
	mutex sync.Mutex
	spans []*RecordedSpan
}

// NewRecorder creates a new Recorder
func NewRecorder() *Recorder {
	return &Recorder{spans: []*RecordedSpan{}}
}

// StartSpan opens a new recorded span. A *RecordedSpan parent links the
// child into the parent's trace; any other parent (including nil) starts a
// new trace.
func (r *Recorder) StartSpan(name string, parent interfaces.Span) interfaces.Span {
	span := &RecordedSpan{
		TraceID: uuid.NewString(),
		SpanID:  uuid.NewString(),
		Name:    name,
		Tags:    map[string]interface{}{},
	}
	if p, ok := parent.(*RecordedSpan); ok && p != nil {
		span.Parent = p
		span.TraceID = p.TraceID
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.spans = append(r.spans, span)
	return span
}

// Spans returns the recorded spans in open order.
func (r *Recorder) Spans() []*RecordedSpan {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	spans := make([]*RecordedSpan, len(r.spans))
	copy(spans, r.spans)
	return spans
}

// Find returns the first recorded span with the given name, or nil.
func (r *Recorder) Find(name string) *RecordedSpan {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, span := range r.spans {
		if span.Name == name {
			return span
		}
	}
	return nil
}

// Children returns the recorded spans whose parent is the given span.
func (r *Recorder) Children(parent *RecordedSpan) []*RecordedSpan {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var children []*RecordedSpan
	for _, span := range r.spans {
		if span.Parent == parent {
			children = append(children, span)
		}
	}
	return children
}

// Reset discards all recorded spans.
func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.spans = []*RecordedSpan{}
}
