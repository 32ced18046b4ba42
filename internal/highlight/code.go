package highlight

import (
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
)

// Code is a tokenized code block.
// It always has at least one line.
type Code struct {
	Lines []Line
}

// Line is a single row of a code block.
// Its tokens do not include the line terminator.
type Line []chroma.Token

// Text reassembles the source text of this line.
func (l Line) Text() string {
	var sb strings.Builder
	for _, tok := range l {
		sb.WriteString(tok.Value)
	}
	return sb.String()
}

// Tokenize lexes src with the given lexer
// and splits the result into lines.
func Tokenize(lexer Lexer, src string) (*Code, error) {
	tokens, err := lexer.Lex([]byte(src))
	if err != nil {
		return nil, err
	}
	return &Code{Lines: SplitLines(tokens)}, nil
}

// SplitLines splits a token stream into lines on "\n".
// Tokens spanning multiple lines are split into one token per line,
// and empty tokens are dropped.
//
// The result always holds at least one line,
// so empty input produces a single empty line.
// A single trailing empty line (left by lexers that append a newline)
// is dropped.
func SplitLines(tokens []chroma.Token) []Line {
	lines := []Line{nil}
	for _, tok := range tokens {
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part == "" {
				continue
			}
			last := len(lines) - 1
			lines[last] = append(lines[last], chroma.Token{Type: tok.Type, Value: part})
		}
	}

	if n := len(lines); n > 1 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}
	return lines
}
