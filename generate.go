package main

import (
	"context"
	"html/template"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/codeblock"
	"github.com/sophnet/docsite/internal/content"
	"github.com/sophnet/docsite/internal/errdefer"
	"github.com/sophnet/docsite/internal/html"
	"github.com/sophnet/docsite/internal/markup"
	"github.com/sophnet/docsite/internal/nav"
	"github.com/sophnet/docsite/internal/tags"
	"golang.org/x/sync/errgroup"
)

// Loader finds the pages of the site.
type Loader interface {
	Load(fs.FS) ([]*content.Page, error)
}

var _ Loader = (*content.Loader)(nil)

// Renderer renders a page into a complete HTML file.
type Renderer interface {
	WriteStatic(string) error
	RenderPage(io.Writer, *html.PageInfo) error
}

var _ Renderer = (*html.Renderer)(nil)

// Generator generates the documentation site.
//
// In terms of code organization,
// Generator's purpose is to add a separation between main
// and the program's core logic to aid in testability.
type Generator struct {
	// Log receives progress and warnings.
	// Defaults to discarding them.
	Log *log.Logger

	// DebugLog receives verbose output.
	// Defaults to discarding it.
	DebugLog *log.Logger

	Loader   Loader
	Renderer Renderer

	// Highlighter renders code blocks.
	Highlighter codeblock.Highlighter

	// Fetcher retrieves the source of code blocks.
	Fetcher codeblock.Fetcher

	// Nav is the site navigation.
	Nav []nav.Section

	OutDir string

	// Jobs is the number of pages rendered concurrently.
	// Defaults to 1.
	Jobs int
}

func (g *Generator) logger() *log.Logger {
	if g.Log == nil {
		return log.New(io.Discard, "", 0)
	}
	return g.Log
}

// load loads the pages in src and warns about navigation problems.
func (g *Generator) load(logger *log.Logger, src fs.FS) ([]*content.Page, error) {
	pages, err := g.Loader.Load(src)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	for _, href := range nav.Duplicates(g.Nav) {
		logger.Printf("warning: navigation links to %v more than once", href)
	}
	return pages, nil
}

// Check validates every page found in src without writing anything.
// All diagnostics are logged.
// It fails if any page has a critical diagnostic.
func (g *Generator) Check(src fs.FS) error {
	logger := g.logger()
	pages, err := g.load(logger, src)
	if err != nil {
		return err
	}

	proc := markup.Processor{Registry: tags.Default(nil), Log: logger}
	var critical int
	for _, page := range pages {
		for _, d := range proc.Check(page.Body) {
			logger.Printf("%v: %v", page.File, d)
			if d.Level == tags.Critical {
				critical++
			}
		}
	}
	if critical > 0 {
		return errtrace.Errorf("found %d critical problem(s)", critical)
	}

	logger.Printf("Checked %d pages", len(pages))
	return nil
}

// Generate renders every page found in src into OutDir.
func (g *Generator) Generate(ctx context.Context, src fs.FS) error {
	logger := g.logger()
	debugLog := g.DebugLog
	if debugLog == nil {
		debugLog = log.New(io.Discard, "", 0)
	}

	pages, err := g.load(logger, src)
	if err != nil {
		return err
	}

	if err := g.Renderer.WriteStatic(g.OutDir); err != nil {
		return errtrace.Wrap(err)
	}

	proc := markup.Processor{
		Registry: tags.Default(g.codeBlockFunc(ctx, logger, debugLog)),
		Log:      logger,
	}
	index := nav.NewIndex(g.Nav)

	jobs := g.Jobs
	if jobs < 1 {
		jobs = 1
	}
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(jobs)
	for _, page := range pages {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errtrace.Wrap(err)
			}
			debugLog.Printf("Rendering %v (%v)", page.Path, page.File)
			return g.renderPage(&proc, index, page)
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	logger.Printf("Rendered %d pages to %v", len(pages), g.OutDir)
	return nil
}

// codeBlockFunc renders every code-block tag with its own viewer.
// Rendering blocks until the viewer's source has been fetched.
func (g *Generator) codeBlockFunc(ctx context.Context, logger, debugLog *log.Logger) tags.CodeBlockFunc {
	return func(rawURL, language, code string) (template.HTML, error) {
		if rawURL != "" && code == "" {
			debugLog.Printf("Fetching %v", rawURL)
		}

		v := codeblock.Viewer{
			Fetcher:     g.Fetcher,
			Highlighter: g.Highlighter,
			Log:         logger,
		}
		v.Mount(ctx, codeblock.Props{
			RawURL:   rawURL,
			Language: language,
			Code:     code,
		})
		v.Wait()
		return v.Render()
	}
}

func (g *Generator) renderPage(proc *markup.Processor, index *nav.Index, page *content.Page) (err error) {
	body, err := proc.Render(page.File, page.Body)
	if err != nil {
		return errtrace.Wrap(err)
	}

	info := html.PageInfo{
		Path:        page.Path,
		Title:       page.Meta.Title,
		Description: page.Meta.Description,
		Body:        body,
	}
	if entry, ok := index.Locate(page.Path); ok {
		info.Active = &entry
	}
	if info.Title == "" {
		info.Title = g.fallbackTitle(page, info.Active)
	}

	dir := filepath.Join(g.OutDir, filepath.FromSlash(page.Path))
	if err := os.MkdirAll(dir, 0o1755); err != nil {
		return errtrace.Wrap(err)
	}

	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	return errtrace.Wrap(g.Renderer.RenderPage(f, &info))
}

// fallbackTitle picks a title for a page without one in its front matter:
// its first heading, the navigation link it belongs to, or its file name.
func (g *Generator) fallbackTitle(page *content.Page, active *nav.Entry) string {
	if title := markup.Title(page.Body); title != "" {
		return title
	}
	if active != nil {
		link := g.Nav[active.Section].Links[active.Link]
		if strings.Trim(link.Href, "/") == strings.Trim(page.Path, "/") {
			return link.Title
		}
	}
	base := path.Base(page.File)
	return base[:len(base)-len(path.Ext(base))]
}
