package di

import (
	"fmt"
	"strings"
)

// Get resolves a dependency name. The local registry is consulted first,
// triggering lazy factories as needed, then the import chain in import
// order. Get returns nil when the name is unknown: nil is the reserved
// not-found sentinel, never an error. The error return carries factory and
// load failures only; use Require to make not-found itself an error.
func (inj *Injector) Get(name string) (interface{}, error) {
	return inj.resolve(normalize(name), false, nil)
}

// GetPublic resolves a dependency name through the restricted view that
// importing injectors see: only entries marked Public are considered.
func (inj *Injector) GetPublic(name string) (interface{}, error) {
	return inj.resolve(normalize(name), true, nil)
}

// Require is Get with not-found treated as a failure: an unknown name
// yields a DependencyNotFound error instead of the nil sentinel.
func (inj *Injector) Require(name string) (interface{}, error) {
	n := normalize(name)
	v, err := inj.resolve(n, false, nil)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &Error{
			Code:     DependencyNotFound,
			Injector: inj.name,
			cause:    fmt.Sprintf("dependency not found: %s", n),
		}
	}
	return v, nil
}

// MustGet is Require with failures raised through panic. It is the fatal
// counterpart of Get for wiring code that has no error path of its own.
func (inj *Injector) MustGet(name string) interface{} {
	v, err := inj.Require(name)
	if err != nil {
		panic(err)
	}
	return v
}

// resolve looks the normalized name up locally, then walks the import
// chain. seen guards against revisiting an injector when imports form a
// cycle; it is allocated lazily on the first import walk.
func (inj *Injector) resolve(name string, publicOnly bool, seen map[*Injector]struct{}) (interface{}, error) {
	inj.mu.RLock()
	e, key := inj.lookupLocked(name, publicOnly)
	inj.mu.RUnlock()

	if e != nil {
		return e.resolve(inj, key)
	}
	return inj.resolveImports(name, seen)
}

// lookupLocked finds the entry for name in the local registry, honoring the
// visibility restriction. Each entry is stored once under its bare key; a
// name carrying the injector's own name as a prefix is resolved by
// stripping the prefix, which is what makes "appvalue" reach the "value"
// entry of injector "app". An exact key wins over the stripped alias.
func (inj *Injector) lookupLocked(name string, publicOnly bool) (*entry, string) {
	keys := [2]string{name, ""}
	if inj.name != "" && len(name) > len(inj.name) && strings.HasPrefix(name, inj.name) {
		keys[1] = name[len(inj.name):]
	}

	for _, k := range keys {
		if k == "" {
			continue
		}
		e, ok := inj.entries[k]
		if !ok {
			continue
		}
		if publicOnly {
			if _, public := inj.public[k]; !public {
				continue
			}
		}
		return e, k
	}
	return nil, ""
}

// resolveImports queries the imported injectors in order with the
// public-only view and returns the first hit. Successful resolutions are
// memoized in the import cache; a nil (not-found) result never is, so a
// name registered in an import later is still found. The cache write is
// dropped when the import list changed underneath the walk.
func (inj *Injector) resolveImports(name string, seen map[*Injector]struct{}) (interface{}, error) {
	inj.mu.RLock()
	if v, ok := inj.importCache[name]; ok {
		inj.mu.RUnlock()
		inj.log.Trace("import cache hit", "name", name)
		return v, nil
	}
	imports := make([]*Injector, len(inj.imports))
	copy(imports, inj.imports)
	version := inj.importVersion
	inj.mu.RUnlock()

	if len(imports) == 0 {
		return nil, nil
	}

	if seen == nil {
		seen = make(map[*Injector]struct{})
	}
	seen[inj] = struct{}{}

	for _, imp := range imports {
		if _, ok := seen[imp]; ok {
			continue
		}
		v, err := imp.resolve(name, true, seen)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}

		inj.mu.Lock()
		if inj.importVersion == version {
			inj.importCache[name] = v
		}
		inj.mu.Unlock()

		inj.log.Trace("resolved via import", "name", name, "import", imp.name)
		return v, nil
	}
	return nil, nil
}
