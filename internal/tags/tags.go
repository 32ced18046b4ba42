// Package tags declares the custom markup tags available to authors:
// their names, attribute schemas, and how they render to HTML.
//
// The registry only declares. Authored attributes are checked against
// these schemas by the content processor before Render is called.
package tags

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"braces.dev/errtrace"
)

// Type is the expected type of an attribute value.
type Type int

// Supported attribute types.
const (
	String  Type = iota + 1 // a quoted string
	Number                  // an integer or decimal number
	Boolean                 // true or false
	Style                   // CSS declarations, e.g. "width: 100%; border: 0"
)

func (t Type) String() string {
	switch t {
	case String:
		return "String"
	case Number:
		return "Number"
	case Boolean:
		return "Boolean"
	case Style:
		return "Style"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ErrorLevel controls what happens when an attribute fails validation.
type ErrorLevel int

const (
	// Warning reports the problem and falls back to the default value.
	Warning ErrorLevel = iota

	// Critical rejects the document.
	Critical
)

func (l ErrorLevel) String() string {
	if l == Critical {
		return "critical"
	}
	return "warning"
}

// Attribute describes one attribute accepted by a tag.
type Attribute struct {
	Type Type

	// Default is used when the attribute is omitted.
	// It must be of the Go type that Type resolves to, or nil.
	Default any

	// Matches, if non-empty, lists the only values allowed.
	Matches []string

	ErrorLevel ErrorLevel
}

// Allows reports whether the given string value is permitted
// by the Matches list of this attribute.
func (a Attribute) Allows(v string) bool {
	if len(a.Matches) == 0 {
		return true
	}
	for _, m := range a.Matches {
		if m == v {
			return true
		}
	}
	return false
}

// Node is a tag occurrence with its resolved attributes.
type Node struct {
	Name string

	// Attrs holds values keyed by attribute name.
	// Values are string, float64, bool, or StyleValue
	// according to the attribute's Type.
	Attrs map[string]any

	// Children is the rendered content between the opening and closing tag.
	// It is always empty for self-closing tags.
	Children template.HTML
}

// Text returns the named attribute as a string,
// or an empty string if it's absent or of a different type.
func (n *Node) Text(name string) string {
	s, _ := n.Attrs[name].(string)
	return s
}

// Style returns the named attribute as CSS declarations.
func (n *Node) Style(name string) StyleValue {
	s, _ := n.Attrs[name].(StyleValue)
	return s
}

// RenderFunc renders a tag occurrence into HTML.
type RenderFunc func(*Node) (template.HTML, error)

// Definition declares a single tag.
type Definition struct {
	Name string

	// SelfClosing tags do not accept child content.
	SelfClosing bool

	Attributes map[string]Attribute

	// Render produces the HTML for the tag.
	Render RenderFunc
}

// Registry is a set of tag definitions keyed by name.
type Registry struct {
	defs map[string]*Definition
}

// New builds a registry from the given definitions.
// Later definitions replace earlier ones with the same name.
func New(defs ...*Definition) *Registry {
	r := Registry{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		r.defs[d.Name] = d
	}
	return &r
}

// Lookup returns the definition for the tag with the given name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names lists the registered tag names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StyleValue is a parsed list of CSS declarations.
type StyleValue []Declaration

// Declaration is a single CSS property and its value.
type Declaration struct {
	Property string
	Value    string
}

// ParseStyle parses "prop: value; prop: value" into declarations.
// Empty declarations are skipped.
func ParseStyle(s string) (StyleValue, error) {
	var style StyleValue
	for _, decl := range strings.Split(s, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, value, ok := strings.Cut(decl, ":")
		prop, value = strings.TrimSpace(prop), strings.TrimSpace(value)
		if !ok || prop == "" || value == "" {
			return nil, errtrace.Errorf("invalid declaration %q", decl)
		}
		style = append(style, Declaration{Property: prop, Value: value})
	}
	return style, nil
}

// String formats the declarations back into CSS.
func (s StyleValue) String() string {
	var sb strings.Builder
	for i, d := range s {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
	}
	return sb.String()
}
