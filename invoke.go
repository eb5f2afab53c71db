package di

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// CallOption configures a single invocation.
type CallOption func(*callBuilder) error

type callBuilder struct {
	overrides map[string]interface{}
}

func newCallBuilder(opts ...CallOption) (*callBuilder, error) {
	b := &callBuilder{overrides: make(map[string]interface{})}

	var buildErr error
	for _, opt := range opts {
		if err := opt(b); err != nil {
			buildErr = multierror.Append(buildErr, err)
		}
	}

	return b, buildErr
}

// Override supplies a custom value for one dependency name of a single
// invocation, consulted before the registry. An explicit nil override means
// "absent": the parameter keeps its zero value and is exempt from the
// missing-dependency check, unlike leaving the name out entirely, which
// still requires the registry to resolve it.
func Override(name string, v interface{}) CallOption {
	return func(b *callBuilder) error {
		b.overrides[normalize(name)] = v
		return nil
	}
}

// Invoke resolves every dependency the target declares and calls it. The
// target is a *Func, a Func, or a raw function acceptable to NewFunc. Names
// resolve through Get, so imports and lazy factories participate; Override
// values win over registered entries. Unresolvable names fail the call with
// a single DependencyNotFound listing them in declaration order.
func (inj *Injector) Invoke(target interface{}, opts ...CallOption) Result {
	f, err := asFunc(target)
	if err != nil {
		return resultError(inj.adoptError(err))
	}

	b, err := newCallBuilder(opts...)
	if err != nil {
		return resultError(err)
	}

	log := inj.log.With("func", f.Name())

	args, err := inj.buildArgs(f, b, log)
	if err != nil {
		return resultError(err)
	}

	log.Trace("invoking")
	return newResult(f.fn.Call(args))
}

// Call is an alias for Invoke: the injector used as the call site itself.
func (inj *Injector) Call(target interface{}, opts ...CallOption) Result {
	return inj.Invoke(target, opts...)
}

// Callback returns a zero-argument wrapper performing the same resolution
// as Invoke when later called. Resolution happens at call time, so entries
// registered after the wrapper was built are still found; timer and handler
// call sites get injection without re-specifying dependencies.
func (inj *Injector) Callback(target interface{}, opts ...CallOption) func() Result {
	return func() Result {
		return inj.Invoke(target, opts...)
	}
}

// InvokeEach invokes one target against every injector, in order, and
// collects one Result per injector. A failing injector does not stop the
// walk: its error accumulates into the returned error and the remaining
// injectors still run.
func InvokeEach(injectors []*Injector, target interface{}, opts ...CallOption) ([]Result, error) {
	results := make([]Result, len(injectors))

	var errs error
	for i, inj := range injectors {
		results[i] = inj.Invoke(target, opts...)
		if err := results[i].Err(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return results, errs
}

// buildArgs produces the call arguments for f, resolving each declared
// dependency against the overrides first and the registry second. All
// slots start at their zero value so explicit absent overrides need no
// further work.
func (inj *Injector) buildArgs(f *Func, b *callBuilder, log hclog.Logger) ([]reflect.Value, error) {
	var structVal reflect.Value
	var in []reflect.Value

	if f.structArg {
		structVal = reflect.New(structParamType(f.typ.In(0))).Elem()
	} else {
		in = make([]reflect.Value, f.typ.NumIn())
		for i := 0; i < f.typ.NumIn(); i++ {
			in[i] = reflect.Zero(f.typ.In(i))
		}
	}

	assign := func(p param, rv reflect.Value) {
		if f.structArg {
			structVal.Field(p.index).Set(rv)
		} else {
			in[p.index] = rv
		}
	}

	var missing []string
	for _, p := range f.deps {
		if ov, ok := b.overrides[p.name]; ok {
			if ov == nil {
				log.Trace("argument absent by override", "name", p.name)
				continue
			}
			rv := reflect.ValueOf(ov)
			if !rv.Type().AssignableTo(p.typ) {
				return nil, inj.unsatisfiable(f, p, rv.Type())
			}
			assign(p, rv)
			continue
		}

		v, err := inj.resolve(p.name, false, nil)
		if err != nil {
			return nil, err
		}
		if v == nil {
			missing = append(missing, p.name)
			continue
		}

		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(p.typ) {
			return nil, inj.unsatisfiable(f, p, rv.Type())
		}
		assign(p, rv)
		log.Trace("argument resolved", "name", p.name)
	}

	if len(missing) > 0 {
		return nil, &Error{
			Code:     DependencyNotFound,
			Injector: inj.name,
			cause:    fmt.Sprintf("dependency not found: %s", strings.Join(missing, ", ")),
			fn:       f,
		}
	}

	if f.structArg {
		if f.ptrArg {
			return []reflect.Value{structVal.Addr()}, nil
		}
		return []reflect.Value{structVal}, nil
	}
	return in, nil
}

// unsatisfiable reports a resolved or overridden value whose type cannot
// feed the declared parameter.
func (inj *Injector) unsatisfiable(f *Func, p param, got reflect.Type) error {
	return &Error{
		Code:     DependencyNotFound,
		Injector: inj.name,
		cause: fmt.Sprintf("dependency %q of type %s cannot satisfy parameter of type %s",
			p.name, got, p.typ),
		fn: f,
	}
}

// adoptError stamps the injector's name onto a context-free *Error.
func (inj *Injector) adoptError(err error) error {
	if de, ok := err.(*Error); ok && de.Injector == "" {
		de.Injector = inj.name
	}
	return err
}
