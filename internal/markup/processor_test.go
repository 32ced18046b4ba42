package markup

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/sophnet/docsite/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func newProcessor(t *testing.T) (*Processor, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	return &Processor{
		Registry: tags.Default(nil),
		Log:      log.New(&logs, "", 0),
	}, &logs
}

func render(t *testing.T, p *Processor, src string) *html.Node {
	t.Helper()

	got, err := p.Render("test.md", []byte(src))
	require.NoError(t, err)

	doc, err := html.Parse(strings.NewReader(string(got)))
	require.NoError(t, err, "invalid HTML:\n%v", got)
	return doc
}

func allText(n *html.Node) string {
	var (
		sb    strings.Builder
		visit func(*html.Node)
	)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for n := n.FirstChild; n != nil; n = n.NextSibling {
			visit(n)
		}
	}
	visit(n)
	return sb.String()
}

func TestProcessor_Render_markdown(t *testing.T) {
	t.Parallel()

	p, _ := newProcessor(t)
	doc := render(t, p, "# Hello\n\nSome *text* and a [link](/docs).\n")

	h1 := cascadia.MustCompile("h1#hello").MatchFirst(doc)
	require.NotNil(t, h1)
	assert.Equal(t, "Hello", allText(h1))

	link := cascadia.MustCompile("p > a[href='/docs']").MatchFirst(doc)
	require.NotNil(t, link)
	assert.NotNil(t, cascadia.MustCompile("p > em").MatchFirst(doc))
}

func TestProcessor_Render_callout(t *testing.T) {
	t.Parallel()

	p, logs := newProcessor(t)
	doc := render(t, p, strings.Join([]string{
		"Before.",
		"",
		`{% callout type="warning" title="Heads up" %}`,
		"This is **important**.",
		"{% /callout %}",
		"",
		"After.",
		"",
	}, "\n"))

	callout := cascadia.MustCompile("div.callout.callout-warning").MatchFirst(doc)
	require.NotNil(t, callout)

	title := cascadia.MustCompile("div.callout > p.callout-title").MatchFirst(doc)
	require.NotNil(t, title)
	assert.Equal(t, "Heads up", allText(title))

	strong := cascadia.MustCompile("div.callout-body > p > strong").MatchFirst(doc)
	require.NotNil(t, strong)
	assert.Equal(t, "important", allText(strong))

	paras := cascadia.QueryAll(doc, cascadia.MustCompile("body > p"))
	require.Len(t, paras, 2)
	assert.Equal(t, "Before.", allText(paras[0]))
	assert.Equal(t, "After.", allText(paras[1]))

	assert.Empty(t, logs.String())
}

func TestProcessor_Render_calloutDefaultType(t *testing.T) {
	t.Parallel()

	p, _ := newProcessor(t)
	doc := render(t, p, "{% callout %}\nhi\n{% /callout %}\n")

	assert.NotNil(t, cascadia.MustCompile("div.callout.callout-note").MatchFirst(doc))
	title := cascadia.MustCompile("p.callout-title").MatchFirst(doc)
	require.NotNil(t, title)
	assert.Equal(t, "Note", allText(title))
}

func TestProcessor_Render_calloutRejectsUnknownType(t *testing.T) {
	t.Parallel()

	p, _ := newProcessor(t)
	_, err := p.Render("guide.md", []byte("{% callout type=\"error\" %}\nhi\n{% /callout %}\n"))
	require.Error(t, err)

	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr), "want DocumentError, got %T", err)
	assert.Equal(t, "guide.md", docErr.Name)
	require.Len(t, docErr.Diagnostics, 1)

	d := docErr.Diagnostics[0]
	assert.Equal(t, 1, d.Line)
	assert.Equal(t, "callout", d.Tag)
	assert.Equal(t, "type", d.Attribute)
	assert.Equal(t, tags.Critical, d.Level)
	assert.Contains(t, d.Message, `"error"`)

	assert.Contains(t, err.Error(), `guide.md: invalid document`)
	assert.Contains(t, err.Error(), `line 1: critical: callout: attribute "type"`)
}

func TestProcessor_Render_nested(t *testing.T) {
	t.Parallel()

	p, _ := newProcessor(t)
	doc := render(t, p, strings.Join([]string{
		"{% quick-links %}",
		"",
		`{% quick-link title="Install" icon="installation" href="/docs/install" description="Get set up." /%}`,
		"",
		`{% quick-link title="Code" icon="plugins" href="/docs/sophnet/code" description="Examples." /%}`,
		"",
		"{% /quick-links %}",
	}, "\n"))

	links := cascadia.QueryAll(doc, cascadia.MustCompile("div.quick-links > div.quick-link h2 > a"))
	require.Len(t, links, 2)
	assert.Equal(t, "Install", allText(links[0]))
	assert.Equal(t, "Code", allText(links[1]))
}

func TestProcessor_Render_figure(t *testing.T) {
	t.Parallel()

	p, _ := newProcessor(t)
	doc := render(t, p, `{% figure src="/img/a.png" caption="Flow \"diagram\"" /%}`+"\n")

	img := cascadia.MustCompile("figure > img[src='/img/a.png'][alt='']").MatchFirst(doc)
	require.NotNil(t, img)

	caption := cascadia.MustCompile("figure > figcaption").MatchFirst(doc)
	require.NotNil(t, caption)
	assert.Equal(t, `Flow "diagram"`, allText(caption))
}

func TestProcessor_Render_iframe(t *testing.T) {
	t.Parallel()

	p, _ := newProcessor(t)
	doc := render(t, p, strings.Join([]string{
		`{% iframe src="https://example.com/embed" style="width: 100%; height: 400px" frameborder="0" %}`,
		"{% /iframe %}",
	}, "\n"))

	iframe := cascadia.MustCompile("iframe").MatchFirst(doc)
	require.NotNil(t, iframe)

	got := make(map[string]string)
	for _, a := range iframe.Attr {
		got[a.Key] = a.Val
	}
	assert.Equal(t, map[string]string{
		"src":         "https://example.com/embed",
		"style":       "width: 100%; height: 400px",
		"frameborder": "0",
	}, got)
}

func TestProcessor_Render_codeBlock(t *testing.T) {
	t.Parallel()

	type call struct{ url, lang, code string }
	var calls []call

	p := Processor{
		Registry: tags.Default(func(url, lang, code string) (template.HTML, error) {
			calls = append(calls, call{url, lang, code})
			return `<div class="viewer"></div>`, nil
		}),
	}

	got, err := p.Render("a.md", []byte(strings.Join([]string{
		`{% code-block rawUrl="https://raw.githubusercontent.com/o/r/main/a.go" language="go" /%}`,
		`{% code-block code="const x = 1;\n" /%}`,
	}, "\n")))
	require.NoError(t, err)
	assert.Equal(t, `<div class="viewer"></div><div class="viewer"></div>`, string(got))
	assert.Equal(t, []call{
		{url: "https://raw.githubusercontent.com/o/r/main/a.go", lang: "go"},
		{code: "const x = 1;\n"},
	}, calls)
}

func TestProcessor_Render_renderError(t *testing.T) {
	t.Parallel()

	p := Processor{
		Registry: tags.Default(func(string, string, string) (template.HTML, error) {
			return "", errors.New("great sadness")
		}),
	}
	_, err := p.Render("a.md", []byte("text\n\n{% code-block code=\"x\" /%}\n"))
	assert.ErrorContains(t, err, "a.md: line 3: code-block: great sadness")
}

func TestProcessor_Render_tagsInFencedCode(t *testing.T) {
	t.Parallel()

	p, _ := newProcessor(t)
	doc := render(t, p, strings.Join([]string{
		"```markdown",
		`{% callout type="error" %}`,
		"```",
		"",
		"~~~~",
		"```",
		"{% nope %}",
		"~~~~",
	}, "\n"))

	blocks := cascadia.QueryAll(doc, cascadia.MustCompile("pre > code"))
	require.Len(t, blocks, 2)
	assert.Equal(t, "{% callout type=\"error\" %}\n", allText(blocks[0]))
	assert.Equal(t, "```\n{% nope %}\n", allText(blocks[1]))
	assert.Nil(t, cascadia.MustCompile("div.callout").MatchFirst(doc))
}

func TestProcessor_warnings(t *testing.T) {
	t.Parallel()

	reg := tags.New(&tags.Definition{
		Name: "badge",
		Attributes: map[string]tags.Attribute{
			"color": {
				Type:    tags.String,
				Default: "gray",
				Matches: []string{"gray", "green"},
			},
			"count": {Type: tags.Number},
		},
		Render: func(n *tags.Node) (template.HTML, error) {
			return template.HTML(n.Text("color")), nil
		},
	})

	var logs bytes.Buffer
	p := Processor{Registry: reg, Log: log.New(&logs, "", 0)}

	got, err := p.Render("b.md", []byte(`{% badge color="purple" count="three" /%}`))
	require.NoError(t, err, "warnings must not reject the document")
	assert.Equal(t, "gray", string(got), "should fall back to the default")

	assert.Contains(t, logs.String(), `b.md: line 1: warning: badge: attribute "color": value "purple" must be one of ["gray" "green"]`)
	assert.Contains(t, logs.String(), `b.md: line 1: warning: badge: attribute "count": expected Number, got String`)
}

func TestProcessor_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		give string
		want []Diagnostic
	}{
		{
			desc: "valid",
			give: "{% callout type=\"note\" %}\nx\n{% /callout %}\n",
		},
		{
			desc: "unknown tag",
			give: "text\n{% table /%}\n",
			want: []Diagnostic{
				{Line: 2, Tag: "table", Level: tags.Critical, Message: "unknown tag: expected one of callout, code-block, figure, iframe, quick-link, quick-links"},
			},
		},
		{
			desc: "unknown attribute",
			give: `{% code-block url="x" /%}`,
			want: []Diagnostic{
				{Line: 1, Tag: "code-block", Attribute: "url", Level: tags.Critical, Message: "unknown attribute"},
			},
		},
		{
			desc: "wrong type",
			give: `{% callout title=42 /%}`,
			want: []Diagnostic{
				{Line: 1, Tag: "callout", Attribute: "title", Level: tags.Warning, Message: "expected String, got Number"},
			},
		},
		{
			desc: "bad style",
			give: "{% iframe style=\"width\" %}\n{% /iframe %}",
			want: []Diagnostic{
				{Line: 1, Tag: "iframe", Attribute: "style", Level: tags.Warning, Message: `invalid declaration "width"`},
			},
		},
		{
			desc: "self-closing with content",
			give: "{% figure src=\"a.png\" %}\ncaption\n{% /figure %}\n",
			want: []Diagnostic{
				{
					Line:    1,
					Tag:     "figure",
					Level:   tags.Critical,
					Message: "tag is self-closing and cannot have content; use {% figure /%}",
				},
			},
		},
		{
			desc: "unclosed",
			give: "{% callout %}\nx\n",
			want: []Diagnostic{
				{Line: 1, Tag: "callout", Level: tags.Critical, Message: "tag is never closed"},
			},
		},
		{
			desc: "stray close",
			give: "x\n{% /callout %}\n",
			want: []Diagnostic{
				{Line: 2, Tag: "callout", Level: tags.Critical, Message: "closing tag without matching opening tag"},
			},
		},
		{
			desc: "mismatched close",
			give: "{% callout %}\n{% /iframe %}\n{% /callout %}\n",
			want: []Diagnostic{
				{Line: 2, Tag: "iframe", Level: tags.Critical, Message: `closing tag does not match "callout" opened on line 1`},
			},
		},
		{
			desc: "malformed attributes",
			give: `{% callout title="unterminated /%}`,
			want: []Diagnostic{
				{Line: 1, Tag: "callout", Level: tags.Critical, Message: `malformed attributes: attribute "title": unterminated string`},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			p, _ := newProcessor(t)
			assert.Equal(t, tt.want, p.Check([]byte(tt.give)))
		})
	}
}
