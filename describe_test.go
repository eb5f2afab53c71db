package di

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	require := require.New(t)

	base := New("base")
	base.Register("conn").Value(1).Public()
	base.Register("temp").Value(2)

	app := New("app", WithImports(base))
	app.Register("svc").Value(3).Public()
	app.Register("priv").Value(4)

	expected := strings.Join([]string{
		"injector: app",
		"  public: di, svc",
		"  private: priv",
		"  imports:",
		"    injector: base",
		"      public: conn, di",
	}, "\n") + "\n"

	require.Equal(expected, app.Describe())
}

func TestDescribe_cycle(t *testing.T) {
	require := require.New(t)

	a := New("a")
	b := New("b")
	a.ImportInjectors(b)
	b.ImportInjectors(a)

	expected := strings.Join([]string{
		"injector: a",
		"  public: di",
		"  imports:",
		"    injector: b",
		"      public: di",
		"      imports:",
		"        injector: a (shown above)",
	}, "\n") + "\n"

	require.Equal(expected, a.Describe())
}
