// Package waterfall instruments a sequential chain of continuation-style
// steps with distributed-tracing spans: one span per step and one span for
// the overall sequence, without the step implementations knowing about
// tracing. The spans of successive steps form a single linear parent chain
// under the sequence span.
package waterfall

import "github.com/tracefall/tracefall/pkg/interfaces"

// TraceContext carries sequence-level tracing state between stages. It is
// rebuilt at every stage boundary, never mutated in place, so there is no
// ambient or shared tracing state.
type TraceContext struct {
	// SequenceName is the resolved operation name for the whole sequence.
	// Empty when sequence-level resolution failed.
	SequenceName string

	// SequenceTags are merged onto every step span in the sequence.
	// Empty (but non-nil after the start stage) when resolution failed.
	SequenceTags map[string]interface{}

	// SequenceSpan represents the entire sequence. Nil when resolution
	// failed. Owned by the sequence and finished exactly once, by the
	// finish stage.
	SequenceSpan interfaces.Span

	// ParentSpan is the span the next stage's span is created under.
	// Starts equal to SequenceSpan and advances to each step's own span.
	ParentSpan interfaces.Span
}
