package codeblock

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/highlight"
)

// CopiedDuration is how long the copied indicator stays on
// after a copy.
const CopiedDuration = 2000 * time.Millisecond

// Props are the inputs of a Viewer.
type Props struct {
	// RawURL is the raw-content URL of the source file.
	RawURL string

	// Language used to highlight the source.
	// Defaults to highlight.DefaultLanguage.
	Language string

	// Code, if non-empty, is used instead of fetching RawURL.
	Code string
}

// State is the lifecycle state of a Viewer's text.
type State int

// Viewer states.
const (
	StateInitial State = iota
	StateFetching
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateFetching:
		return "fetching"
	case StateResolved:
		return "resolved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Highlighter renders tokenized code into HTML.
type Highlighter interface {
	Highlight(*highlight.Code) string
}

var _ Highlighter = (*highlight.Highlighter)(nil)

// Viewer is a single code viewer instance.
// Viewers own their state and share nothing with each other.
//
// Configure the exported fields, then call Mount.
type Viewer struct {
	// Fetcher retrieves source text.
	// Required if Mount or Update is called with a RawURL
	// and no inline Code.
	Fetcher Fetcher

	// Clipboard receives text on Copy.
	Clipboard Clipboard

	// Highlighter renders code into HTML.
	// Defaults to a highlight.Highlighter with the plain style.
	Highlighter Highlighter

	// Log receives fetch failures.
	// Defaults to discarding them.
	Log *log.Logger

	// AfterFunc schedules f to run after d.
	// Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())

	mu      sync.Mutex
	mounted bool
	props   Props
	state   State
	text    string
	copied  bool

	inflight sync.WaitGroup
}

// Mount initializes the viewer with its first set of props.
//
// If props carries inline code, that becomes the viewer's text
// and no fetch is issued.
// Otherwise, if props has a RawURL, a fetch starts in the background.
//
// Mount panics if called more than once.
func (v *Viewer) Mount(ctx context.Context, props Props) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.mounted {
		panic("codeblock: viewer is already mounted")
	}
	v.mounted = true
	v.props = props
	v.text = props.Code
	if props.Code != "" {
		v.state = StateResolved
	}
	v.effect(ctx)
}

// Update replaces the viewer's props.
//
// A new fetch starts if the RawURL changed
// or inline code was added or removed,
// and the new props have no inline code.
// Fetches already in flight are not cancelled.
//
// Inline code only seeds the text on Mount;
// changing it later does not replace fetched text.
func (v *Viewer) Update(ctx context.Context, props Props) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.mounted {
		panic("codeblock: viewer is not mounted")
	}

	old := v.props
	v.props = props
	if old.RawURL == props.RawURL && (old.Code != "") == (props.Code != "") {
		return
	}
	v.effect(ctx)
}

// effect starts a fetch if the current props call for one.
// v.mu must be held.
func (v *Viewer) effect(ctx context.Context) {
	url := v.props.RawURL
	if v.props.Code != "" || url == "" {
		return
	}

	v.state = StateFetching
	v.inflight.Add(1)
	go v.fetch(ctx, url)
}

func (v *Viewer) fetch(ctx context.Context, url string) {
	defer v.inflight.Done()

	var (
		text string
		err  error
	)
	if v.Fetcher == nil {
		err = errtrace.Errorf("no fetcher configured")
	} else {
		text, err = v.Fetcher.Fetch(ctx, url)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.logger().Printf("Error fetching code from %v: %v", url, err)
		if v.text == "" {
			v.state = StateInitial
		} else {
			v.state = StateResolved
		}
		return
	}

	v.text = text
	v.state = StateResolved
}

// Wait blocks until all fetches started so far have completed.
func (v *Viewer) Wait() {
	v.inflight.Wait()
}

// State reports the viewer's current state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Text returns the viewer's current source text, as supplied or fetched.
func (v *Viewer) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text
}

// Copied reports whether the copied indicator is on.
func (v *Viewer) Copied() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copied
}

// RepoURL returns the repository browsing URL for the viewer's source.
func (v *Viewer) RepoURL() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return RepoURL(v.props.RawURL)
}

// Copy writes the current text to the clipboard
// and turns on the copied indicator for CopiedDuration.
//
// Every call schedules its own reset,
// so the indicator turns off CopiedDuration after the first
// of a series of rapid copies.
func (v *Viewer) Copy() error {
	if v.Clipboard == nil {
		return errtrace.Errorf("no clipboard configured")
	}

	if err := v.Clipboard.WriteText(v.Text()); err != nil {
		return errtrace.Wrap(fmt.Errorf("copy: %w", err))
	}

	v.mu.Lock()
	v.copied = true
	v.mu.Unlock()

	afterFunc := v.AfterFunc
	if afterFunc == nil {
		afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	afterFunc(CopiedDuration, func() {
		v.mu.Lock()
		v.copied = false
		v.mu.Unlock()
	})
	return nil
}

// Code tokenizes the viewer's current text for display.
// Trailing whitespace is trimmed, and the result has at least one line.
func (v *Viewer) Code() *highlight.Code {
	v.mu.Lock()
	text, lang := v.text, v.props.Language
	v.mu.Unlock()

	return tokenize(lang, text)
}

func tokenize(lang, text string) *highlight.Code {
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	code, err := highlight.Tokenize(highlight.LexerFor(lang), text)
	if err != nil {
		// Lexers only fail on malformed rules.
		// Show the text unhighlighted instead.
		code = &highlight.Code{Lines: highlight.SplitLines(plainTokens(text))}
	}
	return code
}

func (v *Viewer) logger() *log.Logger {
	if v.Log != nil {
		return v.Log
	}
	return log.New(io.Discard, "", 0)
}
