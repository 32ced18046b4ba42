package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/sophnet/docsite/internal/flagvalue"
	"github.com/sophnet/docsite/internal/highlight"
)

var (
	errHelp             = flag.ErrHelp
	errInvalidArguments = errors.New("invalid arguments")
)

// _envPrefix is the prefix for environment variables
// that set flags, e.g. DOCSITE_OUT for -out.
const _envPrefix = "DOCSITE"

// params holds all arguments for docsite.
type params struct {
	version bool
	help    Help

	Debug flagvalue.FileSwitch

	// Site generation:
	OutputDir   string
	NavFile     string
	Embed       bool
	FrontMatter string
	Style       string
	Exclude     flagvalue.Globs
	Timeout     time.Duration
	Jobs        int

	// Development:
	Watch bool
	Serve string
	Check bool

	// Single code block:
	View     bool
	Language string
	Copy     bool

	// Source is the content directory,
	// or with View, the URL of the file to show.
	Source string
}

// cliParser parses the command line arguments for docsite.
type cliParser struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (cmd *cliParser) newFlagSet() (*params, *flag.FlagSet) {
	flag := flag.NewFlagSet("docsite", flag.ContinueOnError)
	flag.SetOutput(cmd.Stderr)
	flag.Usage = func() {
		_ = DefaultHelp.Write(cmd.Stderr)
	}

	var p params

	// Filesystem:
	flag.StringVar(&p.OutputDir, "out", "_site", "")
	flag.StringVar(&p.NavFile, "nav", "", "")
	flag.Var(&p.Exclude, "exclude", "")

	// HTML output:
	flag.BoolVar(&p.Embed, "embed", false, "")
	flag.StringVar(&p.FrontMatter, "frontmatter", "", "")
	flag.StringVar(&p.Style, "style", highlight.PlainStyle.Name, "")

	// Code blocks:
	flag.DurationVar(&p.Timeout, "timeout", 30*time.Second, "")
	flag.IntVar(&p.Jobs, "jobs", 4, "")

	// Development:
	flag.BoolVar(&p.Watch, "watch", false, "")
	flag.StringVar(&p.Serve, "serve", "", "")
	flag.BoolVar(&p.Check, "check", false, "")

	// Single code block:
	flag.BoolVar(&p.View, "view", false, "")
	flag.StringVar(&p.Language, "lang", "", "")
	flag.BoolVar(&p.Copy, "copy", false, "")

	// Program-level:
	flag.String("config", "", "")
	flag.Var(&p.Debug, "debug", "")
	flag.BoolVar(&p.version, "version", false, "")
	flag.Var(&p.help, "help", "")
	flag.Var(&p.help, "h", "")

	return &p, flag
}

func (cmd *cliParser) Parse(args []string) (*params, error) {
	p, flag := cmd.newFlagSet()

	// Precedence: command line, then environment, then config file.
	err := ff.Parse(flag, args,
		ff.WithEnvVarPrefix(_envPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, err
	}
	args = flag.Args()

	if p.version {
		fmt.Fprintln(cmd.Stdout, "docsite", _version)
		return nil, errHelp
	}

	if p.help == DefaultHelp && len(args) > 0 {
		// The user might have done "-h foo"
		// instead of "-h=foo".
		// If the argument is a known help topic,
		// take it.
		var h Help
		if err := h.Set(args[0]); err == nil && h.Known() {
			p.help = h
		}
	}

	switch p.help {
	case NoHelp:
		// proceed as usual
	default:
		if err := p.help.Write(cmd.Stderr); err != nil {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, errHelp
	}

	if err := p.validate(args); err != nil {
		fmt.Fprintln(cmd.Stderr, err)
		_ = UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}
	return p, nil
}

func (p *params) validate(args []string) error {
	switch len(args) {
	case 0:
		if p.View {
			return errors.New("please provide the URL of a file to view")
		}
		return errors.New("please provide a content directory")
	case 1:
		p.Source = args[0]
	default:
		return fmt.Errorf("unexpected arguments: %q", args[1:])
	}

	if p.View {
		u, err := url.Parse(p.Source)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("-view needs an http or https URL, got %q", p.Source)
		}
		if p.Watch || p.Serve != "" || p.Check {
			return errors.New("-view cannot be used with -watch, -serve, or -check")
		}
	} else {
		if p.Copy {
			return errors.New("-copy can only be used with -view")
		}
		if p.Language != "" {
			return errors.New("-lang can only be used with -view")
		}
	}

	if p.Jobs < 1 {
		return fmt.Errorf("-jobs must be at least 1, got %d", p.Jobs)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("-timeout must be positive, got %v", p.Timeout)
	}
	if _, ok := highlight.StyleFor(p.Style); !ok {
		return fmt.Errorf("unknown style %q: see -help=highlight", p.Style)
	}
	if p.Check && (p.Watch || p.Serve != "") {
		return errors.New("-check cannot be used with -watch or -serve")
	}
	if p.Embed && p.Serve != "" {
		return errors.New("-embed cannot be used with -serve")
	}
	if strings.TrimSpace(p.OutputDir) == "" {
		return errors.New("-out must not be empty")
	}
	return nil
}
