package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/tags"
)

// block is a part of a document:
// either Markdown text or a tag with child blocks.
type block interface{ block() }

type textBlock struct {
	src []byte
}

type tagBlock struct {
	name        string
	line        int
	selfClosing bool // authored as {% name /%}
	attrs       []rawAttr
	children    []block
}

func (*textBlock) block() {}
func (*tagBlock) block()  {}

// rawAttr is an attribute as written in the document,
// before it's checked against the registry.
type rawAttr struct {
	name  string
	value any // string, float64, or bool
}

var _tagLine = regexp.MustCompile(`^\s*\{%\s*(/)?\s*([A-Za-z][\w-]*)\s*(.*?)\s*(/)?\s*%\}\s*$`)

// parse splits src into a tree of blocks.
// Structural problems are reported as critical diagnostics.
func parse(src []byte) ([]block, []Diagnostic) {
	var (
		diags []Diagnostic
		root  tagBlock
		stack = []*tagBlock{&root}
		text  bytes.Buffer
		fence []byte // opening fence while inside a fenced code block
	)

	top := func() *tagBlock { return stack[len(stack)-1] }
	flush := func() {
		if text.Len() == 0 {
			return
		}
		b := &textBlock{src: bytes.Clone(text.Bytes())}
		top().children = append(top().children, b)
		text.Reset()
	}
	critical := func(line int, tag, msg string, args ...any) {
		diags = append(diags, Diagnostic{
			Line:    line,
			Tag:     tag,
			Level:   tags.Critical,
			Message: fmt.Sprintf(msg, args...),
		})
	}

	for i, line := range splitLines(src) {
		lineno := i + 1

		if fence != nil {
			text.Write(line)
			if f := fenceOf(line); bytes.HasPrefix(f, fence) && isClosingFence(line) {
				fence = nil
			}
			continue
		}
		if f := fenceOf(line); f != nil {
			fence = f
			text.Write(line)
			continue
		}

		m := _tagLine.FindSubmatch(bytes.TrimRight(line, "\r\n"))
		if m == nil {
			text.Write(line)
			continue
		}
		flush()

		closing, name, attrSrc, selfClosing := len(m[1]) > 0, string(m[2]), string(m[3]), len(m[4]) > 0
		switch {
		case closing:
			if len(attrSrc) > 0 || selfClosing {
				critical(lineno, name, "closing tag cannot have attributes")
			}
			if len(stack) == 1 {
				critical(lineno, name, "closing tag without matching opening tag")
				continue
			}
			if open := top(); open.name != name {
				critical(lineno, name, "closing tag does not match %q opened on line %d", open.name, open.line)
				continue
			}
			stack = stack[:len(stack)-1]

		default:
			attrs, err := parseAttrs(attrSrc)
			if err != nil {
				critical(lineno, name, "malformed attributes: %v", err)
			}
			t := &tagBlock{
				name:        name,
				line:        lineno,
				selfClosing: selfClosing,
				attrs:       attrs,
			}
			top().children = append(top().children, t)
			if !selfClosing {
				stack = append(stack, t)
			}
		}
	}
	flush()

	for _, open := range stack[1:] {
		critical(open.line, open.name, "tag is never closed")
	}

	return root.children, diags
}

// splitLines splits src into lines, keeping line terminators.
func splitLines(src []byte) [][]byte {
	if len(src) == 0 {
		return nil
	}
	lines := bytes.SplitAfter(src, []byte("\n"))
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// fenceOf returns the fence marker (``` or ~~~, possibly longer)
// that starts the line, or nil.
func fenceOf(line []byte) []byte {
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return nil
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return nil
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return nil
	}
	return trimmed[:n]
}

// isClosingFence reports whether the line holds only a fence marker.
func isClosingFence(line []byte) bool {
	f := fenceOf(line)
	if f == nil {
		return false
	}
	rest := bytes.TrimLeft(line, " ")[len(f):]
	return len(bytes.TrimSpace(rest)) == 0
}

// parseAttrs parses space-separated name=value pairs.
func parseAttrs(s string) ([]rawAttr, error) {
	var attrs []rawAttr
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return attrs, nil
		}

		name, rest, ok := cutName(s)
		if !ok {
			return attrs, errtrace.Errorf("expected attribute name at %q", s)
		}
		rest = strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(rest, "=") {
			return attrs, errtrace.Errorf("expected '=' after %q", name)
		}
		rest = strings.TrimLeft(rest[1:], " \t")

		value, rest, err := cutValue(rest)
		if err != nil {
			return attrs, errtrace.Errorf("attribute %q: %w", name, err)
		}
		attrs = append(attrs, rawAttr{name: name, value: value})
		s = rest
	}
}

func cutName(s string) (name, rest string, ok bool) {
	i := 0
	for i < len(s) {
		c := s[i]
		isAlpha := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
		isNameChar := isAlpha || c >= '0' && c <= '9' || c == '-'
		if i == 0 && !isAlpha || !isNameChar {
			break
		}
		i++
	}
	return s[:i], s[i:], i > 0
}

func cutValue(s string) (value any, rest string, err error) {
	if strings.HasPrefix(s, `"`) {
		// Find the closing quote, skipping escaped characters.
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case '"':
				str, err := strconv.Unquote(s[:i+1])
				if err != nil {
					return nil, "", errtrace.Errorf("bad string %s", s[:i+1])
				}
				return str, s[i+1:], nil
			}
		}
		return nil, "", errtrace.Errorf("unterminated string")
	}

	end := strings.IndexAny(s, " \t")
	if end < 0 {
		end = len(s)
	}
	word, rest := s[:end], s[end:]
	switch word {
	case "true":
		return true, rest, nil
	case "false":
		return false, rest, nil
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return f, rest, nil
	}
	return nil, "", errtrace.Errorf("unexpected value %q", word)
}
