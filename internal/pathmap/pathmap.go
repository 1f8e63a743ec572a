// Package pathmap rewrites hidden infrastructure directory names to
// display-safe equivalents so summary artifacts land at paths that are
// visible in ordinary listings. The same mapping is applied when writing
// an artifact and when a parent directory reads a child's artifact back,
// so the two sides always agree on placement.
package pathmap

import (
	"path/filepath"
	"strings"
)

// componentMap is the fixed substitution table. Keys are literal path
// components; values must never themselves appear as keys, which is what
// makes Map idempotent.
var componentMap = map[string]string{
	".github": "github",
}

// MapComponent returns the display-safe name for a single path component.
// Components without an entry in the table are returned unchanged.
func MapComponent(name string) string {
	if mapped, ok := componentMap[name]; ok {
		return mapped
	}
	return name
}

// Map applies the substitution table to every component of p independently,
// preserving separators and absoluteness. Mapping an already-mapped path is
// a no-op.
func Map(p string) string {
	if p == "" {
		return p
	}
	slash := filepath.ToSlash(p)
	rooted := strings.HasPrefix(slash, "/")
	parts := strings.Split(strings.TrimPrefix(slash, "/"), "/")
	for i, part := range parts {
		parts[i] = MapComponent(part)
	}
	out := strings.Join(parts, "/")
	if rooted {
		out = "/" + out
	}
	return filepath.FromSlash(out)
}
