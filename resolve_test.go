package di

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	cases := []struct {
		Name     string
		Register string
		Lookup   string
	}{
		{"exact", "value", "value"},
		{"case-insensitive", "Value", "VALUE"},
		{"punctuation ignored", "my-value", "my_value"},
		{"spaces ignored", "some value", "somevalue"},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require := require.New(t)

			inj := New("app")
			inj.Register(tt.Register).Value(42)

			v, err := inj.Get(tt.Lookup)
			require.NoError(err)
			require.Equal(42, v)
		})
	}
}

func TestGet_missing(t *testing.T) {
	require := require.New(t)

	inj := New("app")
	v, err := inj.Get("nope")
	require.NoError(err)
	require.Nil(v)
}

func TestGet_ownNamePrefix(t *testing.T) {
	require := require.New(t)

	inj := New("app")
	inj.Register("value").Value(1)

	// The injector's own name works as a prefix locally too.
	v, err := inj.Get("appvalue")
	require.NoError(err)
	require.Equal(1, v)

	// An exact entry beats the prefix-stripped alias.
	inj.Register("appvalue").Value(2)
	v, err = inj.Get("appvalue")
	require.NoError(err)
	require.Equal(2, v)
}

func TestGet_throughImports(t *testing.T) {
	require := require.New(t)

	base := New("base")
	base.Register("dep").Value("x").Public()

	app := New("app", WithImports(base))

	v, err := app.Get("dep")
	require.NoError(err)
	require.Equal("x", v)

	// The imported injector's name works as a prefix for its entries.
	v, err = app.Get("basedep")
	require.NoError(err)
	require.Equal("x", v)
}

func TestGet_privateInvisibleThroughImports(t *testing.T) {
	require := require.New(t)

	base := New("base")
	base.Register("secret").Value("hidden")

	app := New("app", WithImports(base))

	v, err := app.Get("secret")
	require.NoError(err)
	require.Nil(v)

	// Locally the entry resolves fine.
	v, err = base.Get("secret")
	require.NoError(err)
	require.Equal("hidden", v)
}

func TestGet_importOrder(t *testing.T) {
	require := require.New(t)

	a := New("a")
	a.Register("n").Value("first").Public()
	b := New("b")
	b.Register("n").Value("second").Public()

	inj := New("inj", WithImports(a, b))

	v, err := inj.Get("n")
	require.NoError(err)
	require.Equal("first", v)
}

func TestGet_transitiveImports(t *testing.T) {
	require := require.New(t)

	c := New("c")
	c.Register("deep").Value(7).Public()
	b := New("b", WithImports(c))
	a := New("a", WithImports(b))

	v, err := a.Get("deep")
	require.NoError(err)
	require.Equal(7, v)
}

func TestGet_importCycle(t *testing.T) {
	require := require.New(t)

	a := New("a")
	b := New("b")
	a.ImportInjectors(b)
	b.ImportInjectors(a)

	// A missing name terminates instead of looping.
	v, err := a.Get("ghost")
	require.NoError(err)
	require.Nil(v)

	b.Register("found").Value(1).Public()
	v, err = a.Get("found")
	require.NoError(err)
	require.Equal(1, v)
}

func TestGetPublic(t *testing.T) {
	require := require.New(t)

	inj := New("app")
	inj.Register("pub").Value(1).Public()
	inj.Register("priv").Value(2)

	v, err := inj.GetPublic("pub")
	require.NoError(err)
	require.Equal(1, v)

	v, err = inj.GetPublic("priv")
	require.NoError(err)
	require.Nil(v)
}

func TestGetPublic_privateExactFallsToPublicAlias(t *testing.T) {
	require := require.New(t)

	inj := New("app")
	inj.Register("appvalue").Value("exact")
	inj.Register("value").Value("alias").Public()

	// Publicly the private exact entry is skipped and the prefix-stripped
	// alias answers; locally the exact entry still wins.
	v, err := inj.GetPublic("appvalue")
	require.NoError(err)
	require.Equal("alias", v)

	v, err = inj.Get("appvalue")
	require.NoError(err)
	require.Equal("exact", v)
}

func TestRequire(t *testing.T) {
	require := require.New(t)

	inj := New("app")
	inj.Register("present").Value(1)

	v, err := inj.Require("present")
	require.NoError(err)
	require.Equal(1, v)

	_, err = inj.Require("ghost")
	require.Error(err)
	require.Contains(err.Error(), "dependency not found: ghost")
	require.Contains(err.Error(), "(di: app)")

	var de *Error
	require.True(errors.As(err, &de))
	require.Equal(DependencyNotFound, de.Code)
}

func TestMustGet(t *testing.T) {
	require := require.New(t)

	inj := New("app")
	inj.Register("present").Value("v")

	require.Equal("v", inj.MustGet("present"))
	require.Panics(func() { inj.MustGet("ghost") })
}

func TestFactory_memoized(t *testing.T) {
	require := require.New(t)

	calls := 0
	inj := New("app")
	inj.Register("counted").Factory(func() int {
		calls++
		return calls
	})

	v, err := inj.Get("counted")
	require.NoError(err)
	require.Equal(1, v)

	v, err = inj.Get("counted")
	require.NoError(err)
	require.Equal(1, v)
	require.Equal(1, calls)
}

func TestFactory_memoizedConcurrent(t *testing.T) {
	require := require.New(t)

	var calls int32
	inj := New("app")
	inj.Register("shared").Factory(func() int32 {
		return atomic.AddInt32(&calls, 1)
	})

	const workers = 16
	results := make([]interface{}, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = inj.Get("shared")
		}(i)
	}
	wg.Wait()

	require.Equal(int32(1), atomic.LoadInt32(&calls))
	for i := range results {
		require.NoError(errs[i])
		require.Equal(int32(1), results[i])
	}
}

func TestFactory_errorMemoized(t *testing.T) {
	require := require.New(t)

	errBoom := errors.New("boom")
	calls := 0

	inj := New("app")
	inj.Register("broken").Factory(func() (int, error) {
		calls++
		return 0, errBoom
	})

	_, err := inj.Get("broken")
	require.Error(err)
	require.Contains(err.Error(), `factory for "broken" failed (di: app)`)
	require.True(errors.Is(err, errBoom))

	_, err2 := inj.Get("broken")
	require.Equal(err, err2)
	require.Equal(1, calls)
}

func TestImportCache(t *testing.T) {
	require := require.New(t)

	base := New("base")
	base.Register("n").Value(1).Public()

	app := New("app", WithImports(base))

	v, err := app.Get("n")
	require.NoError(err)
	require.Equal(1, v)

	// Imported resolutions are memoized: re-registering in the import
	// does not change what the importer sees.
	base.Register("n").Value(2).Public()
	v, err = app.Get("n")
	require.NoError(err)
	require.Equal(1, v)

	// Changing the import list drops the cache wholesale.
	app.ImportInjectors(New("other"))
	v, err = app.Get("n")
	require.NoError(err)
	require.Equal(2, v)
}

func TestImportCache_precedenceAfterNewImport(t *testing.T) {
	require := require.New(t)

	p1 := New("p1")
	p1.Register("cached").Value(1).Public()

	child := New("child", WithImports(p1))
	v, err := child.Get("cached")
	require.NoError(err)
	require.Equal(1, v)

	// A new import carrying the same name invalidates the cache, and the
	// re-resolution still prefers the first-registered import.
	p2 := New("p2")
	p2.Register("cached").Value(2).Public()
	child.ImportInjectors(p2)

	v, err = child.Get("cached")
	require.NoError(err)
	require.Equal(1, v)
}

func TestImportCache_nilNeverCached(t *testing.T) {
	require := require.New(t)

	base := New("base")
	app := New("app", WithImports(base))

	v, err := app.Get("late")
	require.NoError(err)
	require.Nil(v)

	// A miss is not memoized, so registering afterwards works.
	base.Register("late").Value(9).Public()
	v, err = app.Get("late")
	require.NoError(err)
	require.Equal(9, v)
}

func TestImportCache_staleWriteDropped(t *testing.T) {
	require := require.New(t)

	app := New("app")
	base := New("base")
	base.Register("n").Factory(func() int {
		// Changes the importer's list while its walk is in flight.
		app.ImportInjectors(New("other"))
		return 42
	}).Public()
	app.ImportInjectors(base)

	v, err := app.Get("n")
	require.NoError(err)
	require.Equal(42, v)

	// The import list moved underneath the walk, so the write was dropped.
	_, cached := app.importCache["n"]
	require.False(cached)

	// A walk over the settled import list memoizes again.
	v, err = app.Get("n")
	require.NoError(err)
	require.Equal(42, v)

	_, cached = app.importCache["n"]
	require.True(cached)
}
