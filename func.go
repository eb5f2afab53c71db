package di

import (
	"fmt"
	"reflect"
	"runtime"
)

// Func pairs a callable with the ordered list of dependency names feeding
// its parameters. Go reflection cannot recover parameter names, so the
// manifest is explicit: either passed to NewFunc alongside the function, or
// derived from the exported field names of a single struct parameter.
//
// A Func is immutable and safe to invoke against any number of injectors.
type Func struct {
	fn   reflect.Value
	typ  reflect.Type
	deps []param

	// structArg marks a function taking one struct (or pointer to
	// struct) whose fields carry the dependency names; deps then indexes
	// fields instead of parameters.
	structArg bool
	ptrArg    bool

	name string
}

// param is one dependency the function declares: its normalized name, the
// parameter (or struct field) index it feeds and that slot's type.
type param struct {
	name  string
	index int
	typ   reflect.Type
}

// NewFunc builds a Func from fn and the dependency names matching fn's
// parameters in declaration order.
//
// With explicit deps, one name per parameter is required. With no deps, fn
// must either take no parameters, or take a single struct (or pointer to
// struct) whose exported fields name the dependencies: the lower-cased
// field name, overridable with a `di:"name"` tag, while `di:"-"` leaves a
// field zero. Variadic functions are not supported.
func NewFunc(fn interface{}, deps ...string) (*Func, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, &Error{
			Code:  NotAFunction,
			cause: fmt.Sprintf("target is not callable, got %T", fn),
		}
	}

	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, &Error{
			Code:  NotAFunction,
			cause: fmt.Sprintf("variadic functions are not supported: %s", ft),
		}
	}

	f := &Func{fn: fv, typ: ft}

	switch {
	case len(deps) > 0:
		if len(deps) != ft.NumIn() {
			return nil, &Error{
				Code: NotAFunction,
				cause: fmt.Sprintf("%d dependency names for %d parameters: %s",
					len(deps), ft.NumIn(), ft),
			}
		}
		f.deps = make([]param, len(deps))
		for i, d := range deps {
			f.deps[i] = param{name: normalize(d), index: i, typ: ft.In(i)}
		}

	case ft.NumIn() == 0:
		// Niladic target, nothing to resolve.

	case ft.NumIn() == 1 && isStructParam(ft.In(0)):
		f.structArg = true
		f.ptrArg = ft.In(0).Kind() == reflect.Ptr
		f.deps = structParams(structParamType(ft.In(0)))

	default:
		return nil, &Error{
			Code: NotAFunction,
			cause: fmt.Sprintf("dependency names required for %d parameters: %s",
				ft.NumIn(), ft),
		}
	}

	return f, nil
}

// NamedFunc is NewFunc with a friendly name attached, used in logs and
// diagnostics instead of the runtime symbol.
func NamedFunc(name string, fn interface{}, deps ...string) (*Func, error) {
	f, err := NewFunc(fn, deps...)
	if err != nil {
		return nil, err
	}
	f.name = name
	return f, nil
}

// MustFunc is a helper that wraps NewFunc and panics on error, for
// package-level targets whose shape is known good.
func MustFunc(f *Func, err error) *Func {
	if err != nil {
		panic(err)
	}
	return f
}

// Deps returns the dependency names the Func declares, in declaration
// order.
func (f *Func) Deps() []string {
	out := make([]string, len(f.deps))
	for i, p := range f.deps {
		out[i] = p.name
	}
	return out
}

// Name returns the name of the function.
//
// This will return the configured name if one was set. If not, this will
// attempt to look up the function name using the pointer. If no friendly
// name can be found, this falls back to the type signature.
func (f *Func) Name() string {
	name := f.name

	if name == "" {
		if rfunc := runtime.FuncForPC(f.fn.Pointer()); rfunc != nil {
			name = rfunc.Name()
		}
		if name == "" {
			name = f.typ.String()
		}
	}

	return name
}

// String returns the name for this function. See Name.
func (f *Func) String() string {
	return f.Name()
}

// signature is the short textual excerpt diagnostics attach to errors.
func (f *Func) signature() string {
	return f.typ.String()
}

// origin reports the file:line where the function is defined, when the
// runtime can recover it.
func (f *Func) origin() string {
	rfunc := runtime.FuncForPC(f.fn.Pointer())
	if rfunc == nil {
		return ""
	}

	file, line := rfunc.FileLine(rfunc.Entry())
	return fmt.Sprintf("%s:%d", file, line)
}

// asFunc coerces an invocation target into a *Func: a prepared Func is used
// as-is and a raw function is wrapped with an empty manifest, so niladic
// and struct-parameter functions work without ceremony.
func asFunc(target interface{}) (*Func, error) {
	switch t := target.(type) {
	case *Func:
		if t == nil {
			return nil, &Error{Code: NotAFunction, cause: "target is not callable, got nil"}
		}
		return t, nil
	case Func:
		return &t, nil
	default:
		return NewFunc(target)
	}
}

func isStructParam(t reflect.Type) bool {
	return t.Kind() == reflect.Struct ||
		(t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct)
}

func structParamType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}

// structParams derives the dependency manifest from a struct's exported
// fields. The field name, lower-cased, is the dependency name unless a
// `di:"name"` tag renames it; `di:"-"` skips the field entirely.
func structParams(t reflect.Type) []param {
	var out []param
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}

		name := sf.Name
		if tag := sf.Tag.Get("di"); tag != "" {
			if tag == "-" {
				continue
			}
			name = tag
		}

		out = append(out, param{
			name:  normalize(name),
			index: i,
			typ:   sf.Type,
		})
	}
	return out
}

// errType is used to detect trailing error returns.
var errType = reflect.TypeOf((*error)(nil)).Elem()
