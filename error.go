package di

import (
	"bytes"
	"fmt"
)

// Code classifies the failures an Injector reports.
type Code int

const (
	// CouldNotLoad means the module-load collaborator failed for a path
	// specifier, at registration time or when resolving a loaded factory.
	CouldNotLoad Code = iota + 1

	// NotAFunction means an invocation target or a registered factory is
	// not callable (or not callable in the required shape).
	NotAFunction

	// DependencyNotFound means one or more required names could not be
	// resolved, either at invocation time or through Require.
	DependencyNotFound
)

// String returns the human-readable name of the code.
func (c Code) String() string {
	switch c {
	case CouldNotLoad:
		return "could not load"
	case NotAFunction:
		return "not a function"
	case DependencyNotFound:
		return "dependency not found"
	default:
		return "unknown"
	}
}

// Error is the structured error the injector raises for every failure in
// its taxonomy. It carries the owning injector's name and, when known, the
// origin path of the failing module and the target function, so the message
// reproduces the call context without the caller re-deriving it.
type Error struct {
	// Code is the failure classification.
	Code Code

	// Injector is the name of the injector that reported the failure.
	// It is empty for failures raised outside any injector, such as
	// NewFunc validation.
	Injector string

	// Path is the module path specifier involved in a load-related
	// failure, empty otherwise.
	Path string

	cause string
	fn    *Func
	err   error
}

// Error formats the failure as "<cause> (di: <injector>)", followed by an
// indented source line when the failure has an origin path and a short
// excerpt of the target function's signature when one is known.
func (e *Error) Error() string {
	buf := new(bytes.Buffer)
	buf.WriteString(e.cause)
	if e.err != nil {
		fmt.Fprintf(buf, ": %s", e.err)
	}
	if e.Injector != "" {
		fmt.Fprintf(buf, " (di: %s)", e.Injector)
	}
	if path := e.origin(); path != "" {
		fmt.Fprintf(buf, "\n    at: %s", path)
	}
	if e.fn != nil {
		fmt.Fprintf(buf, "\n    func: %s (%s)", e.fn.Name(), e.fn.signature())
	}
	return buf.String()
}

// origin is the source location attributed to the failure: the module path
// for load failures, otherwise where the target function is defined.
func (e *Error) origin() string {
	if e.Path != "" {
		return e.Path
	}
	if e.fn != nil {
		return e.fn.origin()
	}
	return ""
}

// Unwrap returns the underlying error for a failure constructed from one,
// preserving the root cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

var _ error = (*Error)(nil)
