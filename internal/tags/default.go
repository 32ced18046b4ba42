package tags

import (
	"bytes"
	"html/template"
	"strings"

	"braces.dev/errtrace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CodeBlockFunc renders a code-block tag.
// rawURL is where to fetch source text from unless code is non-empty.
type CodeBlockFunc func(rawURL, language, code string) (template.HTML, error)

// Default builds the registry of tags available to documentation pages:
// callout, figure, quick-links, quick-link, iframe, and code-block.
//
// codeBlock renders code-block tags.
// If nil, code blocks render their inline code without highlighting.
func Default(codeBlock CodeBlockFunc) *Registry {
	if codeBlock == nil {
		codeBlock = plainCodeBlock
	}

	return New(
		&Definition{
			Name: "callout",
			Attributes: map[string]Attribute{
				"title": {Type: String},
				"type": {
					Type:       String,
					Default:    "note",
					Matches:    []string{"note", "warning"},
					ErrorLevel: Critical,
				},
			},
			Render: renderCallout,
		},
		&Definition{
			Name:        "figure",
			SelfClosing: true,
			Attributes: map[string]Attribute{
				"src":     {Type: String},
				"alt":     {Type: String},
				"caption": {Type: String},
			},
			Render: renderTemplate(_figureTmpl),
		},
		&Definition{
			Name:   "quick-links",
			Render: renderTemplate(_quickLinksTmpl),
		},
		&Definition{
			Name:        "quick-link",
			SelfClosing: true,
			Attributes: map[string]Attribute{
				"title":       {Type: String},
				"description": {Type: String},
				"icon":        {Type: String},
				"href":        {Type: String},
			},
			Render: renderTemplate(_quickLinkTmpl),
		},
		&Definition{
			Name: "iframe",
			Attributes: map[string]Attribute{
				"src":         {Type: String},
				"frameborder": {Type: String},
				"scrolling":   {Type: String},
				"style":       {Type: Style},
				"allow":       {Type: String},
				"width":       {Type: String},
				"height":      {Type: String},
			},
			Render: HostElement("iframe"),
		},
		&Definition{
			Name:        "code-block",
			SelfClosing: true,
			Attributes: map[string]Attribute{
				"rawUrl":   {Type: String},
				"language": {Type: String},
				"code":     {Type: String},
			},
			Render: func(n *Node) (template.HTML, error) {
				return codeBlock(n.Text("rawUrl"), n.Text("language"), n.Text("code"))
			},
		},
	)
}

var (
	_calloutTmpl = template.Must(template.New("callout").Parse(
		`<div class="callout callout-{{.Type}}">` +
			`<p class="callout-title">{{.Title}}</p>` +
			`<div class="callout-body">{{.Children}}</div>` +
			`</div>`))

	_figureTmpl = template.Must(template.New("figure").Parse(
		`<figure>` +
			`<img src="{{.Text "src"}}" alt="{{.Text "alt"}}">` +
			`<figcaption>{{.Text "caption"}}</figcaption>` +
			`</figure>`))

	_quickLinksTmpl = template.Must(template.New("quick-links").Parse(
		`<div class="quick-links">{{.Children}}</div>`))

	_quickLinkTmpl = template.Must(template.New("quick-link").Parse(
		`<div class="quick-link">` +
			`<span class="quick-link-icon icon-{{.Text "icon"}}"></span>` +
			`<h2><a href="{{.Text "href"}}">{{.Text "title"}}</a></h2>` +
			`<p>{{.Text "description"}}</p>` +
			`</div>`))

	_codeTmpl = template.Must(template.New("code").Parse(
		`<pre class="code-block"><code>{{.}}</code></pre>`))
)

func renderTemplate(tmpl *template.Template) RenderFunc {
	return func(n *Node) (template.HTML, error) {
		var buff bytes.Buffer
		if err := tmpl.Execute(&buff, n); err != nil {
			return "", errtrace.Wrap(err)
		}
		return template.HTML(buff.String()), nil
	}
}

func renderCallout(n *Node) (template.HTML, error) {
	typ := n.Text("type")
	title := n.Text("title")
	if title == "" {
		// Casers hold state and can't be shared across goroutines.
		title = cases.Title(language.Und).String(typ)
	}

	var buff bytes.Buffer
	err := _calloutTmpl.Execute(&buff, struct {
		Type     string
		Title    string
		Children template.HTML
	}{Type: typ, Title: title, Children: n.Children})
	if err != nil {
		return "", errtrace.Wrap(err)
	}
	return template.HTML(buff.String()), nil
}

func plainCodeBlock(_, _, code string) (template.HTML, error) {
	var buff bytes.Buffer
	if err := _codeTmpl.Execute(&buff, strings.TrimRight(code, " \t\r\n")); err != nil {
		return "", errtrace.Wrap(err)
	}
	return template.HTML(buff.String()), nil
}

// HostElement renders a tag as the HTML element with the given name,
// copying all resolved attributes onto it in sorted order.
// Boolean attributes are written without a value when true
// and omitted when false.
func HostElement(name string) RenderFunc {
	return func(n *Node) (template.HTML, error) {
		var sb strings.Builder
		sb.WriteString("<")
		sb.WriteString(name)
		for _, attr := range sortedKeys(n.Attrs) {
			var value string
			switch v := n.Attrs[attr].(type) {
			case bool:
				if v {
					sb.WriteString(" " + attr)
				}
				continue
			case StyleValue:
				value = v.String()
			case float64:
				value = formatNumber(v)
			case string:
				value = v
			default:
				return "", errtrace.Errorf("attribute %q: unsupported value %T", attr, v)
			}
			sb.WriteString(" ")
			sb.WriteString(attr)
			sb.WriteString(`="`)
			sb.WriteString(template.HTMLEscapeString(value))
			sb.WriteString(`"`)
		}
		sb.WriteString(">")
		sb.WriteString(string(n.Children))
		sb.WriteString("</")
		sb.WriteString(name)
		sb.WriteString(">")
		return template.HTML(sb.String()), nil
	}
}
