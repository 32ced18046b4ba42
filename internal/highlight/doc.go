// Package highlight provides support to highlight source code blocks.
// It uses the Chroma library to do this work.
//
// Source code is lexed into tokens by a [Lexer]
// and split into [Line]s, which together form a [Code] block.
// A [Highlighter] renders a Code block into HTML,
// one row per line.
package highlight
