package di

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Describe renders the injector's registry and import chain as an indented
// tree for logging and debugging. Names are listed sorted. Imported
// injectors show their public names only, since that is all an import
// exposes; an injector reachable more than once is printed once.
func (inj *Injector) Describe() string {
	buf := new(bytes.Buffer)
	inj.describe(buf, 0, true, map[*Injector]struct{}{})
	return buf.String()
}

func (inj *Injector) describe(buf *bytes.Buffer, depth int, root bool, seen map[*Injector]struct{}) {
	pad := strings.Repeat(" ", depth)

	if _, ok := seen[inj]; ok {
		fmt.Fprintf(buf, "%sinjector: %s (shown above)\n", pad, inj.name)
		return
	}
	seen[inj] = struct{}{}

	inj.mu.RLock()
	var pub, priv []string
	for name := range inj.entries {
		if _, ok := inj.public[name]; ok {
			pub = append(pub, name)
		} else {
			priv = append(priv, name)
		}
	}
	imports := append([]*Injector(nil), inj.imports...)
	inj.mu.RUnlock()

	sort.Strings(pub)
	sort.Strings(priv)

	fmt.Fprintf(buf, "%sinjector: %s\n", pad, inj.name)
	if len(pub) > 0 {
		fmt.Fprintf(buf, "%s  public: %s\n", pad, strings.Join(pub, ", "))
	}
	if root && len(priv) > 0 {
		fmt.Fprintf(buf, "%s  private: %s\n", pad, strings.Join(priv, ", "))
	}
	if len(imports) > 0 {
		fmt.Fprintf(buf, "%s  imports:\n", pad)
		for _, imp := range imports {
			imp.describe(buf, depth+4, false, seen)
		}
	}
}
