// Package flagvalue provides flag.Value implementations
// for docsite's command line.
package flagvalue
