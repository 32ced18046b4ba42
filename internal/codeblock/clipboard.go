package codeblock

import (
	"encoding/base64"
	"fmt"
	"io"

	"braces.dev/errtrace"
)

// Clipboard is a write-only system clipboard.
type Clipboard interface {
	WriteText(string) error
}

// TerminalClipboard writes to the clipboard of the terminal emulator
// attached to W using the OSC 52 escape sequence.
// Terminals that don't support OSC 52 ignore it.
type TerminalClipboard struct {
	W io.Writer // required
}

var _ Clipboard = (*TerminalClipboard)(nil)

// WriteText places s on the terminal's clipboard.
func (c *TerminalClipboard) WriteText(s string) error {
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	_, err := fmt.Fprintf(c.W, "\x1b]52;c;%s\a", enc)
	return errtrace.Wrap(err)
}
