package waterfall

import "fmt"

// guard runs fn and converts a panic into an ordinary error. It keeps
// instrumentation failures structurally separate from business errors:
// callers decide per call site what a failed tracing operation means,
// instead of relying on a blanket recover around the whole wrapper.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}
