package markup

import (
	"fmt"
	"strings"

	"github.com/sophnet/docsite/internal/tags"
)

// Diagnostic is a problem found in a document.
type Diagnostic struct {
	// Line is the 1-based line of the tag at fault.
	Line int

	// Tag is the name of the tag at fault, if any.
	Tag string

	// Attribute is the name of the attribute at fault, if any.
	Attribute string

	Level   tags.ErrorLevel
	Message string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d: %v: ", d.Line, d.Level)
	if d.Tag != "" {
		fmt.Fprintf(&sb, "%s: ", d.Tag)
	}
	if d.Attribute != "" {
		fmt.Fprintf(&sb, "attribute %q: ", d.Attribute)
	}
	sb.WriteString(d.Message)
	return sb.String()
}

// DocumentError is returned when a document has critical diagnostics.
type DocumentError struct {
	// Name of the document.
	Name string

	// Diagnostics holds the critical diagnostics.
	Diagnostics []Diagnostic
}

func (e *DocumentError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	sb.WriteString(": invalid document")
	for _, d := range e.Diagnostics {
		sb.WriteString("\n\t")
		sb.WriteString(d.String())
	}
	return sb.String()
}
