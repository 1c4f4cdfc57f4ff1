package waterfall

// Run feeds payload through the stages one at a time, forwarding each
// stage's continuation output into the next stage, and hands the final
// outcome to done. Execution is single-threaded and cooperative: a stage's
// continuation firing is the sole trigger for the next stage.
//
// A non-nil error from a stage skips the remaining step stages and jumps
// to the last stage, so an Instrument-produced pipeline still closes its
// sequence span before done observes the error unchanged.
func Run(stages []Stage, payload []interface{}, done Terminal) {
	if len(stages) == 0 {
		done(nil, payload)
		return
	}

	var invoke func(i int, err error, tc TraceContext, payload []interface{})
	invoke = func(i int, err error, tc TraceContext, payload []interface{}) {
		stages[i](err, tc, payload, func(nerr error, ntc TraceContext, npayload []interface{}) {
			nexti := i + 1
			if nerr != nil && nexti < len(stages)-1 {
				nexti = len(stages) - 1
			}
			if nexti >= len(stages) {
				done(nerr, npayload)
				return
			}
			invoke(nexti, nerr, ntc, npayload)
		})
	}
	invoke(0, nil, TraceContext{}, payload)
}
