// docsite builds the SophNet documentation site
// from a directory of Markdown pages.
//
// See the -help output for usage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"text/template"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/codeblock"
	"github.com/sophnet/docsite/internal/content"
	"github.com/sophnet/docsite/internal/errdefer"
	"github.com/sophnet/docsite/internal/highlight"
	"github.com/sophnet/docsite/internal/html"
	"github.com/sophnet/docsite/internal/nav"
	"github.com/sophnet/docsite/internal/watch"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := mainCmd{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(cmd.Run(ctx, os.Args[1:]))
}

// mainCmd is the actual entry point to the program.
type mainCmd struct {
	Stdout io.Writer // == os.Stdout
	Stderr io.Writer // == os.Stderr

	log *log.Logger
}

func (cmd *mainCmd) Run(ctx context.Context, args []string) (exitCode int) {
	cmd.log = log.New(cmd.Stderr, "", 0)

	opts, err := (&cliParser{
		Stdout: cmd.Stdout,
		Stderr: cmd.Stderr,
	}).Parse(args)
	if err != nil {
		// '$cmd -h' should exit with zero.
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		// No need to print anything.
		// Parse prints messages.
		return 1
	}

	if err := cmd.run(ctx, opts); err != nil {
		cmd.log.Printf("docsite: %v", err)
		return 1
	}
	return 0
}

func (cmd *mainCmd) run(ctx context.Context, opts *params) (err error) {
	debugOut, err := opts.Debug.Open(cmd.Stderr)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer func() {
		err = errors.Join(err, debugOut.Close())
	}()
	debugLog := log.New(debugOut, "", 0)

	style, ok := highlight.StyleFor(opts.Style)
	if !ok {
		// Validated during parsing.
		style = highlight.PlainStyle
	}

	fetcher := &codeblock.HTTPFetcher{
		Client: &http.Client{Timeout: opts.Timeout},
	}

	if opts.View {
		return (&viewer{
			Stdout:  cmd.Stdout,
			Log:     cmd.log,
			Fetcher: fetcher,
			Style:   style,
		}).View(ctx, opts.Source, opts.Language, opts.Copy)
	}

	sections := nav.Default()
	if opts.NavFile != "" {
		sections, err = loadNav(opts.NavFile)
		if err != nil {
			return err
		}
	}

	var frontmatter *template.Template
	if opts.FrontMatter != "" {
		frontmatter, err = template.New("frontmatter").Parse(opts.FrontMatter)
		if err != nil {
			return errtrace.Wrap(fmt.Errorf("bad frontmatter template: %w", err))
		}
	}

	highlighter := &highlight.Highlighter{
		Style:      style,
		UseClasses: true,
	}

	gen := Generator{
		Log:      cmd.log,
		DebugLog: debugLog,
		Loader:   &content.Loader{Exclude: opts.Exclude},
		Renderer: &html.Renderer{
			SiteName:    _siteName,
			Nav:         sections,
			Embedded:    opts.Embed,
			FrontMatter: frontmatter,
			Highlighter: highlighter,
		},
		Highlighter: highlighter,
		Fetcher:     fetcher,
		Nav:         sections,
		OutDir:      opts.OutputDir,
		Jobs:        opts.Jobs,
	}

	src := os.DirFS(opts.Source)
	if opts.Check {
		return gen.Check(src)
	}
	if err := gen.Generate(ctx, src); err != nil {
		return err
	}
	if !opts.Watch && opts.Serve == "" {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Watch {
		w := watch.Watcher{
			Log:    cmd.log,
			Ignore: []string{opts.OutputDir},
			Rebuild: func(ctx context.Context) error {
				return gen.Generate(ctx, src)
			},
		}
		g.Go(func() error {
			return w.Watch(ctx, opts.Source)
		})
	}
	if opts.Serve != "" {
		s := server{
			Addr: opts.Serve,
			Dir:  opts.OutputDir,
			Log:  cmd.log,
		}
		g.Go(func() error {
			return s.Serve(ctx)
		})
	}
	return errtrace.Wrap(g.Wait())
}

const _siteName = "SophNet"

func loadNav(name string) (_ []nav.Section, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	sections, err := nav.Load(f)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("%v: %w", name, err))
	}
	return sections, nil
}
