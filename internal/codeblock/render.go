package codeblock

import (
	"bytes"
	"html/template"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/highlight"
)

// Labels shown on the viewer.
const (
	SourceLabel = "在 GitHub 上查看"
	CopyLabel   = "复制代码"
	CopiedLabel = "已复制!"
)

var _viewerTmpl = template.Must(template.New("viewer").Parse(
	`<div class="code-block" data-language="{{.Language}}">` +
		`<div class="code-block-header">` +
		`{{with .RepoURL}}<a class="code-block-source" href="{{.}}" target="_blank" rel="noopener noreferrer">{{$.SourceLabel}}</a>{{end}}` +
		`<button type="button" class="code-block-copy" data-label="{{.CopyLabel}}" data-copied-label="{{.CopiedLabel}}">` +
		`{{if .Copied}}{{.CopiedLabel}}{{else}}{{.CopyLabel}}{{end}}` +
		`</button>` +
		`</div>` +
		`<div class="code-block-body">{{.Code}}</div>` +
		`<textarea class="code-block-text" hidden readonly>{{.Text}}</textarea>` +
		`</div>`))

type viewerData struct {
	Language string
	RepoURL  string
	Copied   bool
	Code     template.HTML
	Text     string

	SourceLabel, CopyLabel, CopiedLabel string
}

// Render renders the viewer's current state into HTML.
//
// Text that hasn't been resolved yet renders as a single empty line.
// The untrimmed text is embedded in a hidden element
// for the page's copy button.
func (v *Viewer) Render() (template.HTML, error) {
	v.mu.Lock()
	props, text, copied := v.props, v.text, v.copied
	v.mu.Unlock()

	h := v.Highlighter
	if h == nil {
		h = &highlight.Highlighter{Style: highlight.PlainStyle}
	}

	lang := props.Language
	if lang == "" {
		lang = highlight.DefaultLanguage
	}

	var repoURL string
	if props.RawURL != "" {
		repoURL = RepoURL(props.RawURL)
	}

	var buff bytes.Buffer
	err := _viewerTmpl.Execute(&buff, viewerData{
		Language:    lang,
		RepoURL:     repoURL,
		Copied:      copied,
		Code:        template.HTML(h.Highlight(tokenize(lang, text))),
		Text:        text,
		SourceLabel: SourceLabel,
		CopyLabel:   CopyLabel,
		CopiedLabel: CopiedLabel,
	})
	if err != nil {
		return "", errtrace.Wrap(err)
	}
	return template.HTML(buff.String()), nil
}
