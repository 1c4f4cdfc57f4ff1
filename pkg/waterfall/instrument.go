package waterfall

import (
	"fmt"

	"github.com/tracefall/tracefall/pkg/interfaces"
	"github.com/tracefall/tracefall/pkg/logging"
)

// Option configures Instrument.
type Option func(*options)

type options struct {
	logger logging.Logger
}

// WithLogger installs a diagnostic sink for non-fatal instrumentation
// failures. Without it those failures are silent.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func (o *options) warn(msg string, fields map[string]interface{}) {
	if o.logger == nil {
		return
	}
	o.logger.Warn(msg, fields)
}

// Instrument wraps the given steps into an instrumented stage list: a
// start stage that resolves sequence metadata and opens the sequence span,
// one wrapper per step, and a finish stage that closes the sequence span
// and strips tracing state from the result. The returned list always has
// len(steps)+2 stages.
//
// Instrumentation is strictly additive: whatever the tracer, resolver, or
// tag callbacks do, every handler runs with the same payload and the
// business outcome is unchanged.
func Instrument(tracer interfaces.Tracer, resolve Resolver, steps []Step, opts ...Option) ([]Stage, error) {
	if tracer == nil {
		return nil, fmt.Errorf("waterfall: tracer is required")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	for i, step := range steps {
		if step.Name == "" {
			return nil, fmt.Errorf("waterfall: step %d has no name", i)
		}
		if step.Handler == nil {
			return nil, fmt.Errorf("waterfall: step %q has no handler", step.Name)
		}
	}

	stages := make([]Stage, 0, len(steps)+2)
	stages = append(stages, startStage(tracer, resolve, o))
	for _, step := range steps {
		stages = append(stages, stepStage(tracer, step, o))
	}
	stages = append(stages, finishStage(o))
	return stages, nil
}

// startStage resolves the sequence metadata and opens the sequence span.
// Any resolution failure disables sequence-level tracing for the run and
// is never surfaced to the continuation.
func startStage(tracer interfaces.Tracer, resolve Resolver, o *options) Stage {
	return func(err error, _ TraceContext, payload []interface{}, next Continuation) {
		tc := TraceContext{SequenceTags: map[string]interface{}{}}
		if resolve != nil {
			var resolveErr error
			gerr := guard(func() {
				info, rerr := resolve(payload)
				if rerr != nil {
					resolveErr = rerr
					return
				}
				if info.Operation == "" {
					return
				}
				span := tracer.StartSpan(info.Operation, info.Parent)
				if span == nil {
					return
				}
				tags := info.Tags
				if tags == nil {
					tags = map[string]interface{}{}
				}
				if len(tags) > 0 {
					span.AddTags(tags)
				}
				tc = TraceContext{
					SequenceName: info.Operation,
					SequenceTags: tags,
					SequenceSpan: span,
					ParentSpan:   span,
				}
			})
			if gerr == nil {
				gerr = resolveErr
			}
			if gerr != nil {
				// Partial state from a failed open is discarded.
				tc = TraceContext{SequenceTags: map[string]interface{}{}}
				o.warn("sequence tracing disabled", map[string]interface{}{
					"error": gerr.Error(),
				})
			}
		}
		next(err, tc, payload)
	}
}

// stepStage wraps a single step. It opens the step's span as a child of
// the incoming parent, merges sequence and step tags, and swaps the
// handler's completion callback for one that tags errors, finishes the
// span, and advances the parent chain.
func stepStage(tracer interfaces.Tracer, step Step, o *options) Stage {
	return func(err error, tc TraceContext, payload []interface{}, next Continuation) {
		if err != nil {
			// Conforming executors route errors straight to the finish
			// stage; keep the chain intact for one that does not.
			next(err, tc, payload)
			return
		}

		handlerPayload := payload
		if step.Traceable {
			handlerPayload = append([]interface{}{tc.ParentSpan}, payload...)
		}

		var span interfaces.Span
		if gerr := guard(func() {
			span = tracer.StartSpan(step.Name, tc.ParentSpan)
			if span != nil && len(tc.SequenceTags) > 0 {
				span.AddTags(tc.SequenceTags)
			}
		}); gerr != nil {
			span = nil
			o.warn("step span not created", map[string]interface{}{
				"step":     step.Name,
				"sequence": tc.SequenceName,
				"error":    gerr.Error(),
			})
		}

		if span != nil && step.Tags != nil {
			if gerr := guard(func() {
				if tags := step.Tags(handlerPayload); tags != nil {
					span.AddTags(tags)
				}
			}); gerr != nil {
				o.warn("step tags dropped", map[string]interface{}{
					"step":     step.Name,
					"sequence": tc.SequenceName,
					"error":    gerr.Error(),
				})
			}
		}

		step.Handler(handlerPayload, func(herr error, results []interface{}) {
			nextParent := tc.ParentSpan
			if span != nil {
				if herr != nil {
					if gerr := guard(func() {
						span.SetTag(interfaces.TagError, true)
						span.SetTag(interfaces.TagSamplingPriority, 1)
					}); gerr != nil {
						o.warn("step error tags dropped", map[string]interface{}{
							"step":     step.Name,
							"sequence": tc.SequenceName,
							"error":    gerr.Error(),
						})
					}
				}
				if gerr := guard(span.Finish); gerr != nil {
					o.warn("step span not finished", map[string]interface{}{
						"step":     step.Name,
						"sequence": tc.SequenceName,
						"error":    gerr.Error(),
					})
				}
				nextParent = span
			}
			next(herr, TraceContext{
				SequenceName: tc.SequenceName,
				SequenceTags: tc.SequenceTags,
				SequenceSpan: tc.SequenceSpan,
				ParentSpan:   nextParent,
			}, results)
		})
	}
}

// finishStage closes the sequence span and strips tracing state so the
// caller never observes tracing plumbing in its result. It runs on both
// the success and the error path.
func finishStage(o *options) Stage {
	return func(err error, tc TraceContext, payload []interface{}, next Continuation) {
		if tc.SequenceSpan != nil {
			if gerr := guard(tc.SequenceSpan.Finish); gerr != nil {
				o.warn("sequence span not finished", map[string]interface{}{
					"sequence": tc.SequenceName,
					"error":    gerr.Error(),
				})
			}
		}
		next(err, TraceContext{}, payload)
	}
}
