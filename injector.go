package di

import (
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Injector is a named container of registered dependencies. Entries are
// stored under normalized names and resolved locally first, then through the
// ordered list of imported injectors. An Injector is safe for concurrent
// use; see the package documentation for the composition rules.
//
// Every injector registers itself under the public name "di", which also
// makes it reachable as "<name>di" from any injector that imports it.
type Injector struct {
	name   string
	log    hclog.Logger
	loader Loader

	mu      sync.RWMutex
	entries map[string]*entry
	public  map[string]struct{}
	imports []*Injector

	// importCache memoizes names resolved through imports. It is reset
	// wholesale whenever the import list changes; importVersion lets an
	// in-flight walk detect that reset and drop its stale write.
	importCache   map[string]interface{}
	importVersion uint64
}

// Option configures an Injector during New.
type Option func(*Injector)

// WithImports seeds the injector's import list, as if ImportInjectors had
// been called right after creation.
func WithImports(imports ...*Injector) Option {
	return func(inj *Injector) {
		inj.ImportInjectors(imports...)
	}
}

// WithLogger sets the logger the injector traces registration and
// resolution against. The default is hclog.L().
func WithLogger(log hclog.Logger) Option {
	return func(inj *Injector) {
		inj.log = log
	}
}

// WithLoader sets the module-load collaborator consulted by the Load,
// LoadValue and LoadFactory registration operations. Without one, those
// operations fail with CouldNotLoad.
func WithLoader(l Loader) Option {
	return func(inj *Injector) {
		inj.loader = l
	}
}

// New creates an injector with the given name. The name is normalized
// (lower-cased, non-alphanumerics and leading digits dropped) and doubles
// as the prefix under which the injector's entries can be addressed from
// importing injectors.
func New(name string, opts ...Option) *Injector {
	inj := &Injector{
		name:        normalizeInjectorName(name),
		log:         hclog.L(),
		entries:     make(map[string]*entry),
		public:      make(map[string]struct{}),
		importCache: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(inj)
	}
	inj.log = inj.log.With("injector", inj.name)

	// The injector is a dependency like any other.
	inj.Register("di").Value(inj).Public()

	return inj
}

// Name returns the injector's normalized name.
func (inj *Injector) Name() string {
	return inj.name
}

// NewChild creates a fresh injector that resolves through this one: the
// child imports any injectors given via WithImports first, then the parent,
// then the parent's own imports. The child starts with an empty registry of
// its own; nothing is copied.
func (inj *Injector) NewChild(name string, opts ...Option) *Injector {
	child := New(name, opts...)

	inj.mu.RLock()
	chain := make([]*Injector, 0, len(inj.imports)+1)
	chain = append(chain, inj)
	chain = append(chain, inj.imports...)
	inj.mu.RUnlock()

	child.ImportInjectors(chain...)
	return child
}

// ImportInjectors appends the given injectors to the import list, keeping
// registration order, skipping nil, self and injectors already imported.
// Any successful append invalidates the whole import cache: correctness
// over precision, since a new import may change what a cached name should
// resolve to. It returns the number of injectors actually appended.
func (inj *Injector) ImportInjectors(list ...*Injector) int {
	inj.mu.Lock()
	defer inj.mu.Unlock()

	added := 0
	for _, imp := range list {
		if imp == nil || imp == inj || inj.importedLocked(imp) {
			continue
		}
		inj.imports = append(inj.imports, imp)
		added++
	}

	if added > 0 {
		inj.importCache = make(map[string]interface{})
		inj.importVersion++
		inj.log.Trace("imports changed", "added", added, "total", len(inj.imports))
	}
	return added
}

// ImportNames returns the names of the imported injectors in import order.
func (inj *Injector) ImportNames() []string {
	inj.mu.RLock()
	defer inj.mu.RUnlock()

	names := make([]string, len(inj.imports))
	for i, imp := range inj.imports {
		names[i] = imp.name
	}
	return names
}

func (inj *Injector) importedLocked(target *Injector) bool {
	for _, imp := range inj.imports {
		if imp == target {
			return true
		}
	}
	return false
}
