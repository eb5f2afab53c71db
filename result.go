package di

import "reflect"

// Result is returned from Invoke with the results of the function call.
// This structure lets you access multiple results.
type Result struct {
	out      []reflect.Value
	buildErr error
	fnErr    error
}

// resultError returns a Result carrying a resolution or invocation error.
func resultError(err error) Result {
	return Result{buildErr: err}
}

// newResult wraps the raw outputs of a call. A final output of type error
// is split off and reported through Err rather than counted as a result.
func newResult(out []reflect.Value) Result {
	r := Result{out: out}
	if n := len(out); n > 0 && out[n-1].Type() == errType {
		if err := out[n-1].Interface(); err != nil {
			r.fnErr = err.(error)
		}
		r.out = out[:n-1]
	}
	return r
}

// Err returns any error that occurred as part of the call: a failure to
// resolve the arguments or invoke the target, or a non-nil trailing error
// returned by the target itself.
func (r *Result) Err() error {
	if r.buildErr != nil {
		return r.buildErr
	}
	return r.fnErr
}

// Out returns the i'th result (zero-indexed) of the function, excluding a
// trailing error return. This will panic if i >= Len, so for safety all
// calls to Out should check Len.
func (r *Result) Out(i int) interface{} {
	return r.out[i].Interface()
}

// Len returns the number of outputs, excluding a trailing error return.
func (r *Result) Len() int {
	return len(r.out)
}

// Value returns the first output of the function, or nil when the function
// produced none. It is a convenience for the common single-result target.
func (r *Result) Value() interface{} {
	if len(r.out) == 0 {
		return nil
	}
	return r.out[0].Interface()
}
