package highlight

import (
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// DefaultLanguage is used when no language is specified.
const DefaultLanguage = "typescript"

// Lexer analyzes source code and generates a stream of tokens.
type Lexer interface {
	Lex(src []byte) ([]chroma.Token, error)
}

// LexerFor returns a Lexer for the named language.
// Names are matched against Chroma's lexer names and aliases,
// case-insensitively.
// If lang is empty, DefaultLanguage is used.
// Unknown languages are lexed as plain text.
func LexerFor(lang string) Lexer {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = DefaultLanguage
	}

	l := lexers.Get(lang)
	if l == nil {
		l = lexers.Fallback
	}
	return &chromaLexer{l: chroma.Coalesce(l)}
}

// chromaLexer builds a [Lexer] from a Chroma lexer.
type chromaLexer struct{ l chroma.Lexer }

// Lex lexically analyzes the given source code using Chroma.
func (cl *chromaLexer) Lex(src []byte) ([]chroma.Token, error) {
	return chroma.Tokenise(cl.l, nil, string(src))
}
