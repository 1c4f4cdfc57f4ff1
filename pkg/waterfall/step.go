package waterfall

import "github.com/tracefall/tracefall/pkg/interfaces"

// Handler is a step's business function. It receives the payload forwarded
// by the previous step and signals completion through next. Handlers know
// nothing about tracing.
type Handler func(payload []interface{}, next func(err error, results []interface{}))

// Step describes one unit of a waterfall.
type Step struct {
	// Name labels the step's span. Required.
	Name string

	// Handler is the business function executed for this step.
	Handler Handler

	// Tags computes extra tags for the step's span from the payload the
	// handler is about to receive. Optional; a nil return or a panic
	// leaves the span with the sequence tags only.
	Tags func(payload []interface{}) map[string]interface{}

	// Traceable hands the current parent span to the handler as the
	// first payload element so the handler can open nested spans itself.
	Traceable bool
}

// SequenceInfo is the resolver's description of the whole sequence.
type SequenceInfo struct {
	// Operation names the sequence span. An empty value disables
	// sequence-level tracing.
	Operation string

	// Tags are applied to the sequence span and every step span.
	Tags map[string]interface{}

	// Parent, when non-nil, becomes the sequence span's parent.
	Parent interfaces.Span
}

// Resolver derives sequence-level tracing metadata from the payload handed
// to the first stage. An error, a panic, or an empty Operation all mean
// "no tracing requested" for the sequence; steps are still traced
// individually.
type Resolver func(payload []interface{}) (SequenceInfo, error)

// Continuation hands control from one stage to the next.
type Continuation func(err error, tc TraceContext, payload []interface{})

// Stage is one element of an instrumented pipeline. Stages are produced by
// Instrument and consumed by Run or any executor honoring the same
// contract.
type Stage func(err error, tc TraceContext, payload []interface{}, next Continuation)

// Terminal is the caller's final callback. Tracing state is stripped
// before it runs.
type Terminal func(err error, results []interface{})
