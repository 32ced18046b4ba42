package main

import (
	"context"
	"io"
	"log"

	"braces.dev/errtrace"
	"github.com/alecthomas/chroma/v2"
	"github.com/sophnet/docsite/internal/codeblock"
	"github.com/sophnet/docsite/internal/highlight"
)

// viewer shows a single code block in the terminal.
type viewer struct {
	Stdout  io.Writer
	Log     *log.Logger
	Fetcher codeblock.Fetcher
	Style   *chroma.Style
}

// View fetches the file at rawURL and prints it highlighted as lang.
// With copyText, the text is also copied to the terminal's clipboard.
func (vw *viewer) View(ctx context.Context, rawURL, lang string, copyText bool) error {
	v := codeblock.Viewer{
		Fetcher:   vw.Fetcher,
		Clipboard: &codeblock.TerminalClipboard{W: vw.Stdout},
		Log:       vw.Log,
	}
	v.Mount(ctx, codeblock.Props{RawURL: rawURL, Language: lang})
	v.Wait()

	// The viewer has already logged why.
	if v.State() != codeblock.StateResolved {
		return errtrace.Errorf("could not fetch %v", rawURL)
	}

	vw.Log.Printf("%v: %v", codeblock.SourceLabel, v.RepoURL())
	if err := highlight.WriteTerminal(vw.Stdout, vw.Style, v.Code()); err != nil {
		return errtrace.Wrap(err)
	}

	if copyText {
		if err := v.Copy(); err != nil {
			return err
		}
		if v.Copied() {
			vw.Log.Print(codeblock.CopiedLabel)
		}
	}
	return nil
}
