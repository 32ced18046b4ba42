package flagvalue

import (
	"flag"
	"path"
	"strings"

	"braces.dev/errtrace"
)

// Globs is a repeatable flag holding path.Match patterns.
// Patterns are validated as they are added.
//
//	flag.Var(&opts.Exclude, "exclude", ...)
type Globs []string

var _ flag.Getter = (*Globs)(nil)

// Get returns the patterns as a []string.
func (g *Globs) Get() any { return []string(*g) }

// String returns the patterns separated by "; ".
func (g *Globs) String() string {
	if g == nil {
		return ""
	}
	return strings.Join(*g, "; ")
}

// Set adds a pattern.
func (g *Globs) Set(s string) error {
	if _, err := path.Match(s, ""); err != nil {
		return errtrace.Errorf("bad pattern %q: %w", s, err)
	}
	*g = append(*g, s)
	return nil
}

// Match reports whether any pattern matches name.
func (g Globs) Match(name string) bool {
	for _, pat := range g {
		// Patterns were validated in Set.
		if ok, _ := path.Match(pat, name); ok {
			return true
		}
	}
	return false
}
