// Package html renders documentation pages into complete HTML documents.
package html

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	ttemplate "text/template"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/nav"
	"github.com/sophnet/docsite/internal/relative"
)

// StaticDir is the directory inside the output
// that static assets are written to.
const StaticDir = "_"

var (
	//go:embed tmpl/*.html
	_tmplFS embed.FS

	//go:embed static/**
	_staticFS embed.FS

	// Functions are bound to nil receivers at parse time
	// so that the templates are validated at init,
	// and replaced with real ones on a Clone at render time.
	_pageTmpl = template.Must(
		template.New("page.html").
			Funcs((*render)(nil).FuncMap()).
			ParseFS(_tmplFS, "tmpl/page.html", "tmpl/layout.html", "tmpl/sidebar.html"),
	)
)

// CSSWriter writes the style sheet for highlighted code.
type CSSWriter interface {
	WriteCSS(io.Writer) error
}

// Renderer renders documentation pages.
type Renderer struct {
	// SiteName is appended to the <title> of every page.
	SiteName string

	// Nav is the navigation shown in the sidebar of every page.
	Nav []nav.Section

	// Whether we're in embedded mode.
	// In this mode, output only contains the rendered page body
	// and will not have a layout, sidebar, or static assets.
	Embedded bool

	// FrontMatter to include at the top of each file, if any.
	FrontMatter *ttemplate.Template

	// Highlighter provides CSS for highlighted code.
	// If nil, no extra CSS is written.
	Highlighter CSSWriter
}

func (r *Renderer) templateName() string {
	if r.Embedded {
		return "Body"
	}
	return "Page"
}

// WriteStatic dumps the contents of static/ into dir/_.
// The highlighter's style sheet is appended to css/main.css.
//
// This is a no-op if the renderer is running in embedded mode.
func (r *Renderer) WriteStatic(dir string) error {
	if r.Embedded {
		return nil
	}

	dir = filepath.Join(dir, StaticDir)
	static, err := fs.Sub(_staticFS, "static")
	if err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(fs.WalkDir(static, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || p == "." {
			return err
		}

		outPath := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o1755)
		}

		bs, err := fs.ReadFile(static, p)
		if err != nil {
			return err
		}

		if p == "css/main.css" && r.Highlighter != nil {
			buff := bytes.NewBuffer(bs)
			buff.WriteString("\n")
			if err := r.Highlighter.WriteCSS(buff); err != nil {
				return err
			}
			bs = buff.Bytes()
		}

		return os.WriteFile(outPath, bs, 0o644)
	}))
}

// PageInfo specifies the page that should be rendered.
type PageInfo struct {
	// Path is the site path of the page, e.g. "/docs/sophnet".
	Path string

	Title       string
	Description string

	// Body is the rendered content of the page.
	Body template.HTML

	// Active is the navigation entry the page belongs to, if any.
	// The matching link is marked as the current page in the sidebar.
	Active *nav.Entry
}

// SectionTitle is the title of the navigation section
// the page belongs to, or an empty string.
func (p *PageInfo) SectionTitle(sections []nav.Section) string {
	if p.Active == nil || p.Active.Section >= len(sections) {
		return ""
	}
	return sections[p.Active.Section].Title
}

type frontmatterData struct {
	Path        string
	Title       string
	Description string
	Section     string
}

func (r *Renderer) renderFrontmatter(w io.Writer, d frontmatterData) error {
	if r.FrontMatter == nil {
		return nil
	}

	var buff bytes.Buffer
	if err := r.FrontMatter.Execute(&buff, d); err != nil {
		return errtrace.Wrap(err)
	}

	bs := bytes.TrimSpace(buff.Bytes())
	if len(bs) == 0 {
		return nil
	}
	bs = append(bs, '\n', '\n')

	_, err := w.Write(bs)
	return errtrace.Wrap(err)
}

// RenderPage renders a single documentation page.
// Links to site paths inside the body are made relative to the page.
func (r *Renderer) RenderPage(w io.Writer, info *PageInfo) error {
	body, err := relativeLinks(info.Path, info.Body)
	if err != nil {
		return errtrace.Errorf("%v: %w", info.Path, err)
	}
	page := *info
	page.Body = body
	info = &page

	section := info.SectionTitle(r.Nav)
	err = r.renderFrontmatter(w, frontmatterData{
		Path:        info.Path,
		Title:       info.Title,
		Description: info.Description,
		Section:     section,
	})
	if err != nil {
		return err
	}

	render := render{
		SiteName: r.SiteName,
		Path:     info.Path,
		Nav:      r.Nav,
		Active:   info.Active,
		Section:  section,
	}
	return errtrace.Wrap(template.Must(_pageTmpl.Clone()).
		Funcs(render.FuncMap()).
		ExecuteTemplate(w, r.templateName(), info))
}

type render struct {
	SiteName string
	Path     string
	Nav      []nav.Section
	Active   *nav.Entry
	Section  string
}

func (r *render) FuncMap() template.FuncMap {
	return template.FuncMap{
		"siteName":    func() string { return r.SiteName },
		"navSections": func() []nav.Section { return r.Nav },
		"section":     func() string { return r.Section },
		"static":      r.static,
		"link":        r.link,
		"isActive":    r.isActive,
	}
}

func (r *render) static(p string) string {
	return relative.Path(r.Path, path.Join("/", StaticDir, p))
}

// link turns site paths into relative links
// and leaves everything else alone.
func (r *render) link(href string) string {
	if !relative.IsSitePath(href) {
		return href
	}
	return relative.Path(r.Path, href)
}

func (r *render) isActive(section, link int) bool {
	return r.Active != nil && r.Active.Section == section && r.Active.Link == link
}
