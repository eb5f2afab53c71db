package di

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeString(t *testing.T) {
	require := require.New(t)

	require.Equal("could not load", CouldNotLoad.String())
	require.Equal("not a function", NotAFunction.String())
	require.Equal("dependency not found", DependencyNotFound.String())
	require.Equal("unknown", Code(99).String())
}

func TestErrorFormat(t *testing.T) {
	require := require.New(t)

	e := &Error{
		Code:     DependencyNotFound,
		Injector: "app",
		cause:    "dependency not found: x",
	}
	require.Equal("dependency not found: x (di: app)", e.Error())
}

func TestErrorFormat_withPathAndCause(t *testing.T) {
	require := require.New(t)

	e := &Error{
		Code:     CouldNotLoad,
		Injector: "app",
		Path:     "mod/x",
		cause:    `could not load "mod/x"`,
		err:      io.ErrUnexpectedEOF,
	}
	require.Equal(
		"could not load \"mod/x\": unexpected EOF (di: app)\n    at: mod/x",
		e.Error(),
	)
}

func TestErrorFormat_withFunc(t *testing.T) {
	require := require.New(t)

	f := MustFunc(NewFunc(func(a int) int { return a }, "a"))
	e := &Error{
		Code:     DependencyNotFound,
		Injector: "app",
		cause:    "dependency not found: a",
		fn:       f,
	}

	msg := e.Error()
	require.Contains(msg, "dependency not found: a (di: app)")

	// The target function contributes its definition site and signature.
	require.Contains(msg, "\n    at: ")
	require.Contains(msg, "error_test.go")
	require.Contains(msg, "\n    func: ")
	require.Contains(msg, "func(int) int")
}

func TestErrorFormat_noInjector(t *testing.T) {
	require := require.New(t)

	_, err := NewFunc(42)
	require.Error(err)
	require.NotContains(err.Error(), "(di:")
}

func TestErrorUnwrap(t *testing.T) {
	require := require.New(t)

	root := errors.New("root")
	e := &Error{
		Code:  CouldNotLoad,
		cause: "could not load",
		err:   root,
	}

	require.True(errors.Is(e, root))

	var de *Error
	require.True(errors.As(error(e), &de))
	require.Same(e, de)
}
