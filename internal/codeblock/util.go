package codeblock

import chroma "github.com/alecthomas/chroma/v2"

func plainTokens(text string) []chroma.Token {
	if text == "" {
		return nil
	}
	return []chroma.Token{{Type: chroma.Text, Value: text}}
}
