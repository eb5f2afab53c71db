package di

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader resolves a path specifier to a module value on behalf of an
// injector. LoadValue and LoadFactory consult the injector's Loader, so
// swapping one out changes where modules come from without touching the
// registration call sites.
type Loader interface {
	Load(path string) (interface{}, error)
}

// MapLoader serves modules from an in-memory table, for tests and for
// programs that assemble their modules in code.
type MapLoader struct {
	modules map[string]interface{}
}

// NewMapLoader returns an empty MapLoader.
func NewMapLoader() *MapLoader {
	return &MapLoader{modules: make(map[string]interface{})}
}

// Provide maps path to v, replacing any previous module under the same
// path, and returns the loader for chaining.
func (l *MapLoader) Provide(path string, v interface{}) *MapLoader {
	l.modules[path] = v
	return l
}

// Load implements Loader.
func (l *MapLoader) Load(path string) (interface{}, error) {
	v, ok := l.modules[path]
	if !ok {
		return nil, fmt.Errorf("no module provided for %q", path)
	}
	return v, nil
}

// FileLoader reads YAML or JSON documents relative to Root and returns the
// decoded value, typically paired with LoadValue for configuration
// modules.
type FileLoader struct {
	// Root is the directory path specifiers resolve against. Empty means
	// the working directory.
	Root string
}

// Load implements Loader.
func (l *FileLoader) Load(path string) (interface{}, error) {
	raw, err := os.ReadFile(filepath.Join(l.Root, path))
	if err != nil {
		return nil, err
	}

	var v interface{}
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return v, nil
}

// EnvLoader resolves path specifiers as environment variable names,
// optionally seeding the process environment from dotenv files first.
type EnvLoader struct{}

// NewEnvLoader returns an EnvLoader after loading the given dotenv files
// into the process environment. With no files the environment is used
// as-is.
func NewEnvLoader(files ...string) (*EnvLoader, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, err
		}
	}
	return &EnvLoader{}, nil
}

// Load implements Loader.
func (l *EnvLoader) Load(path string) (interface{}, error) {
	v, ok := os.LookupEnv(path)
	if !ok {
		return nil, fmt.Errorf("environment variable %s is not set", path)
	}
	return v, nil
}

var (
	_ Loader = (*MapLoader)(nil)
	_ Loader = (*FileLoader)(nil)
	_ Loader = (*EnvLoader)(nil)
)
