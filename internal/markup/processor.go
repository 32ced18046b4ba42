package markup

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"strings"
	"sync"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/tags"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Processor checks documents against a tag registry
// and renders them into HTML.
//
// A Processor is safe for concurrent use
// if the renderers in its registry are.
type Processor struct {
	// Registry declares the tags documents may use.
	Registry *tags.Registry // required

	// Log receives warnings.
	// Defaults to discarding them.
	Log *log.Logger

	once sync.Once
	md   goldmark.Markdown
}

func (p *Processor) init() {
	p.once.Do(func() {
		p.md = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// Authors may mix raw HTML into their pages.
			goldmark.WithRendererOptions(html.WithUnsafe()),
		)
		if p.Log == nil {
			p.Log = log.New(io.Discard, "", 0)
		}
	})
}

// Check reports all problems in the document without rendering it.
func (p *Processor) Check(src []byte) []Diagnostic {
	_, diags := p.resolve(src)
	return diags
}

// Render renders the named document into HTML.
//
// If the document has critical diagnostics,
// a *DocumentError listing them is returned.
// Warnings are logged.
func (p *Processor) Render(name string, src []byte) (template.HTML, error) {
	p.init()

	blocks, diags := p.resolve(src)

	var critical []Diagnostic
	for _, d := range diags {
		if d.Level == tags.Critical {
			critical = append(critical, d)
		} else {
			p.Log.Printf("%v: %v", name, d)
		}
	}
	if len(critical) > 0 {
		return "", errtrace.Wrap(&DocumentError{Name: name, Diagnostics: critical})
	}

	var buff bytes.Buffer
	if err := p.renderBlocks(&buff, blocks); err != nil {
		return "", errtrace.Wrap(fmt.Errorf("%v: %w", name, err))
	}
	return template.HTML(buff.String()), nil
}

// resolvedTag is a tag block checked against its definition.
type resolvedTag struct {
	def      *tags.Definition
	line     int
	attrs    map[string]any
	children []any // *textBlock or *resolvedTag
}

// resolve parses the document and checks every tag in it.
func (p *Processor) resolve(src []byte) ([]any, []Diagnostic) {
	blocks, diags := parse(src)
	resolved := p.resolveBlocks(blocks, &diags)
	return resolved, diags
}

func (p *Processor) resolveBlocks(blocks []block, diags *[]Diagnostic) []any {
	out := make([]any, 0, len(blocks))
	for _, b := range blocks {
		switch b := b.(type) {
		case *textBlock:
			out = append(out, b)
		case *tagBlock:
			if t := p.resolveTag(b, diags); t != nil {
				out = append(out, t)
			}
		default:
			panic(fmt.Sprintf("unrecognized block type %T", b))
		}
	}
	return out
}

func (p *Processor) resolveTag(b *tagBlock, diags *[]Diagnostic) *resolvedTag {
	report := func(attr string, level tags.ErrorLevel, msg string, args ...any) {
		*diags = append(*diags, Diagnostic{
			Line:      b.line,
			Tag:       b.name,
			Attribute: attr,
			Level:     level,
			Message:   fmt.Sprintf(msg, args...),
		})
	}

	def, ok := p.Registry.Lookup(b.name)
	if !ok {
		report("", tags.Critical, "unknown tag: expected one of %v", strings.Join(p.Registry.Names(), ", "))
		return nil
	}
	if def.SelfClosing && !b.selfClosing {
		report("", tags.Critical, "tag is self-closing and cannot have content; use {%% %s /%%}", b.name)
	}

	attrs := make(map[string]any, len(def.Attributes))
	for name, attr := range def.Attributes {
		if attr.Default != nil {
			attrs[name] = attr.Default
		}
	}

	for _, raw := range b.attrs {
		attr, ok := def.Attributes[raw.name]
		if !ok {
			report(raw.name, tags.Critical, "unknown attribute")
			continue
		}

		value, err := convert(attr, raw.value)
		if err != nil {
			report(raw.name, attr.ErrorLevel, "%v", err)
			continue
		}
		attrs[raw.name] = value
	}

	return &resolvedTag{
		def:      def,
		line:     b.line,
		attrs:    attrs,
		children: p.resolveBlocks(b.children, diags),
	}
}

// convert checks a raw attribute value against its declaration
// and converts it to the Go type the declaration calls for.
func convert(attr tags.Attribute, v any) (any, error) {
	switch attr.Type {
	case tags.String:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(attr.Type, v)
		}
		if !attr.Allows(s) {
			return nil, errtrace.Errorf("value %q must be one of %q", s, attr.Matches)
		}
		return s, nil

	case tags.Number:
		f, ok := v.(float64)
		if !ok {
			return nil, typeError(attr.Type, v)
		}
		return f, nil

	case tags.Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, typeError(attr.Type, v)
		}
		return b, nil

	case tags.Style:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(attr.Type, v)
		}
		style, err := tags.ParseStyle(s)
		if err != nil {
			return nil, err
		}
		return style, nil

	default:
		panic(fmt.Sprintf("unrecognized attribute type %v", attr.Type))
	}
}

func typeError(want tags.Type, got any) error {
	return errtrace.Errorf("expected %v, got %v", want, kindOf(got))
}

func kindOf(v any) string {
	switch v.(type) {
	case string:
		return "String"
	case float64:
		return "Number"
	case bool:
		return "Boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func (p *Processor) renderBlocks(w *bytes.Buffer, blocks []any) error {
	for _, b := range blocks {
		switch b := b.(type) {
		case *textBlock:
			if err := p.md.Convert(b.src, w); err != nil {
				return errtrace.Wrap(err)
			}
		case *resolvedTag:
			var children bytes.Buffer
			if err := p.renderBlocks(&children, b.children); err != nil {
				return err
			}
			out, err := b.def.Render(&tags.Node{
				Name:     b.def.Name,
				Attrs:    b.attrs,
				Children: template.HTML(children.String()),
			})
			if err != nil {
				return errtrace.Errorf("line %d: %v: %w", b.line, b.def.Name, err)
			}
			w.WriteString(string(out))
		default:
			panic(fmt.Sprintf("unrecognized block type %T", b))
		}
	}
	return nil
}
