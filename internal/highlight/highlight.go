package highlight

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
)

// LineClass is the class of the element wrapping each line.
const LineClass = "line"

// Highlighter turns [Code] into HTML.
type Highlighter struct {
	// Style used for syntax highlighting of code.
	Style *chroma.Style

	// UseClasses specifies whether the highlighter
	// uses inline 'style' attributes for highlighting,
	// or classes, assumign use of an appropriate style sheet.
	UseClasses bool

	once      sync.Once
	formatter *chromahtml.Formatter
}

func (h *Highlighter) init() {
	h.once.Do(func() {
		if h.Style == nil {
			h.Style = PlainStyle
		}
		h.formatter = chromahtml.New(
			chromahtml.PreventSurroundingPre(true),
			chromahtml.WithClasses(h.UseClasses),
		)
	})
}

// WriteCSS writes the style classes for this highlighter to writer.
// If this highlighter is not using classes, WriteCSS is a no-op.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	h.init()

	if !h.UseClasses {
		return nil
	}

	return h.formatter.WriteCSS(w, h.Style)
}

// Highlight renders the given code block into HTML.
// Each line is wrapped in a <div class="line">.
func (h *Highlighter) Highlight(code *Code) string {
	h.init()

	if code == nil {
		return ""
	}

	var buff bytes.Buffer
	if h.UseClasses {
		fmt.Fprintf(&buff, "<pre class=%q>", chroma.StandardTypes[chroma.PreWrapper])
	} else {
		style := chromahtml.StyleEntryToCSS(h.Style.Get(chroma.PreWrapper))
		fmt.Fprintf(&buff, "<pre style=%q>", style)
	}
	buff.WriteString("<code>")
	for _, line := range code.Lines {
		fmt.Fprintf(&buff, "<div class=%q>", LineClass)
		if err := h.formatter.Format(&buff, h.Style, chroma.Literator(line...)); err != nil {
			// Formatting into a bytes.Buffer doesn't fail.
			panic(fmt.Sprintf("format line: %v", err))
		}
		buff.WriteString("</div>")
	}
	buff.WriteString("</code></pre>")
	return buff.String()
}

// WriteTerminal writes the code block to w
// with 256-color terminal escape sequences.
func WriteTerminal(w io.Writer, style *chroma.Style, code *Code) error {
	if style == nil {
		style = PlainStyle
	}
	f := formatters.Get("terminal256")
	for _, line := range code.Lines {
		if err := f.Format(w, style, chroma.Literator(line...)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
