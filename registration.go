package di

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// entry is one registered slot: either a resolved value or a factory that
// has not run yet. Resolution is memoized at the entry so a factory runs at
// most once per injector lifetime, including under concurrent first access.
type entry struct {
	once    sync.Once
	lazy    bool
	factory reflect.Value

	// path is the specifier the entry was loaded from, kept for
	// diagnostics on factory failures.
	path string

	value interface{}
	err   error
}

// resolve returns the entry's value, running the factory on first access.
// A factory's result, or its error, permanently replaces the pending state.
func (e *entry) resolve(inj *Injector, name string) (interface{}, error) {
	e.once.Do(func() {
		if !e.lazy {
			return
		}
		inj.log.Trace("invoking factory", "name", name)
		e.value, e.err = callFactory(e.factory)
		if e.err != nil && e.path != "" {
			e.err = fmt.Errorf("factory for %q failed (di: %s): %w\n    at: %s",
				name, inj.name, e.err, e.path)
		} else if e.err != nil {
			e.err = fmt.Errorf("factory for %q failed (di: %s): %w", name, inj.name, e.err)
		}
	})
	return e.value, e.err
}

// callFactory invokes a zero-argument factory and splits off a trailing
// error return, mirroring how invocation results are read.
func callFactory(fn reflect.Value) (interface{}, error) {
	out := fn.Call(nil)
	if n := len(out); n > 0 && out[n-1].Type() == errType {
		if err := out[n-1].Interface(); err != nil {
			return nil, err.(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// Registration is the chainable builder returned by Injector.Register. Each
// operation stores or re-stores the entry for the registration's name and
// returns the builder; failures accumulate and surface through Err.
type Registration struct {
	inj  *Injector
	name string
	err  error
}

// Register starts a registration for the given dependency name. The name is
// normalized, so any spelling that normalizes to the same key addresses the
// same entry. Registering an existing name overwrites its entry.
//
// A name made entirely of ignored characters normalizes to the empty
// string, which no lookup can address; such registrations are dropped.
func (inj *Injector) Register(name string) *Registration {
	return &Registration{inj: inj, name: normalize(name)}
}

// Value stores v as a plain entry.
//
// A nil v is accepted but indistinguishable from an absent entry on lookup:
// nil is the reserved not-found sentinel.
func (r *Registration) Value(v interface{}) *Registration {
	r.inj.setEntry(r.name, &entry{value: v})
	return r
}

// Factory stores fn as a lazy entry. fn must be a function taking no
// arguments and returning a value, or a value and an error. It is invoked
// at most once, on first resolution; the result memoizes over the entry.
//
// A factory must not resolve its own name, directly or through a chain of
// factories: lookups block until the pending factory returns, so the cycle
// deadlocks.
func (r *Registration) Factory(fn interface{}) *Registration {
	return r.factory(fn, "")
}

func (r *Registration) factory(fn interface{}, path string) *Registration {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return r.fail(&Error{
			Code:     NotAFunction,
			Injector: r.inj.name,
			Path:     path,
			cause:    fmt.Sprintf("factory for %q is not callable, got %T", r.name, fn),
		})
	}

	ft := fv.Type()
	switch {
	case ft.NumIn() != 0:
		return r.fail(&Error{
			Code:     NotAFunction,
			Injector: r.inj.name,
			Path:     path,
			cause:    fmt.Sprintf("factory for %q must not take arguments", r.name),
		})
	case ft.NumOut() == 0 || ft.NumOut() > 2 || (ft.NumOut() == 2 && ft.Out(1) != errType):
		return r.fail(&Error{
			Code:     NotAFunction,
			Injector: r.inj.name,
			Path:     path,
			cause:    fmt.Sprintf("factory for %q must return (T) or (T, error)", r.name),
		})
	}

	r.inj.setEntry(r.name, &entry{lazy: true, factory: fv, path: path})
	return r
}

// LoadValue loads the path specifier through the injector's Loader and
// stores the result as a plain entry, whatever its kind.
func (r *Registration) LoadValue(path string) *Registration {
	v, err := r.load(path)
	if err != nil {
		return r.fail(err)
	}
	r.inj.setEntry(r.name, &entry{value: v, path: path})
	return r
}

// LoadFactory loads the path specifier and stores the result as a factory.
// The loaded module must be callable.
func (r *Registration) LoadFactory(path string) *Registration {
	v, err := r.load(path)
	if err != nil {
		return r.fail(err)
	}
	if v == nil || reflect.ValueOf(v).Kind() != reflect.Func {
		return r.fail(&Error{
			Code:     NotAFunction,
			Injector: r.inj.name,
			Path:     path,
			cause:    fmt.Sprintf("loaded module for %q is not callable, got %T", r.name, v),
		})
	}
	return r.factory(v, path)
}

// Load loads the path specifier and auto-detects the entry kind: a callable
// module is stored as a factory, anything else as a plain value.
func (r *Registration) Load(path string) *Registration {
	v, err := r.load(path)
	if err != nil {
		return r.fail(err)
	}
	if v != nil && reflect.ValueOf(v).Kind() == reflect.Func {
		return r.factory(v, path)
	}
	r.inj.setEntry(r.name, &entry{value: v, path: path})
	return r
}

// Public marks the registration's name as visible to importing injectors.
// Without it the entry stays private: resolvable locally, invisible through
// imports.
func (r *Registration) Public() *Registration {
	if r.name == "" {
		return r
	}
	r.inj.mu.Lock()
	r.inj.public[r.name] = struct{}{}
	r.inj.mu.Unlock()
	return r
}

// Err returns every failure accumulated by the chained operations, nil if
// all of them succeeded.
func (r *Registration) Err() error {
	return r.err
}

func (r *Registration) load(path string) (interface{}, error) {
	if r.inj.loader == nil {
		return nil, &Error{
			Code:     CouldNotLoad,
			Injector: r.inj.name,
			Path:     path,
			cause:    fmt.Sprintf("could not load %q: no loader configured", path),
		}
	}
	v, err := r.inj.loader.Load(path)
	if err != nil {
		return nil, &Error{
			Code:     CouldNotLoad,
			Injector: r.inj.name,
			Path:     path,
			cause:    fmt.Sprintf("could not load %q", path),
			err:      err,
		}
	}
	return v, nil
}

func (r *Registration) fail(err error) *Registration {
	r.err = multierror.Append(r.err, err).ErrorOrNil()
	return r
}

func (inj *Injector) setEntry(name string, e *entry) {
	if name == "" {
		inj.log.Debug("dropped registration, name normalizes to empty")
		return
	}
	inj.mu.Lock()
	inj.entries[name] = e
	inj.mu.Unlock()
	inj.log.Trace("registered", "name", name, "lazy", e.lazy)
}
