package cache

import "strings"

// sanitizeSegment normalizes a caller-supplied key segment. Tenant ids,
// collection names and document ids flow in from outside this package; a
// segment containing the separator or whitespace would corrupt the key
// namespace and break prefix-based invalidation. The mapping is injective:
// '_' doubles and every special character gets its own escape code, so two
// distinct raw segments can never sanitize to the same string and distinct
// tenants can never share a key.
func sanitizeSegment(s string) string {
	if s == "" {
		return "_e"
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '_':
			b.WriteString("__")
		case ':':
			b.WriteString("_c")
		case ' ':
			b.WriteString("_s")
		case '\t':
			b.WriteString("_t")
		case '\n':
			b.WriteString("_n")
		case '\r':
			b.WriteString("_r")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
