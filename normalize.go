package di

import "strings"

// normalize canonicalizes a dependency or injector name: every rune outside
// [a-zA-Z0-9] is dropped and the remainder is lower-cased. It is total and
// deterministic, so the same name always resolves to the same key no matter
// how it was written at registration or lookup time.
func normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, raw)
}

// normalizeInjectorName applies normalize and additionally strips a leading
// run of digits. Injector names double as lookup prefixes, so they must not
// begin with characters that could belong to a bare dependency name starting
// with digits. Dependency names keep their leading digits.
func normalizeInjectorName(raw string) string {
	return strings.TrimLeft(normalize(raw), "0123456789")
}
