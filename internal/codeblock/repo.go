package codeblock

import "strings"

const (
	_rawHost  = "raw.githubusercontent.com"
	_repoHost = "github.com"
)

// RepoURL derives the repository browsing URL for a raw-content URL.
//
//	https://raw.githubusercontent.com/org/repo/main/file.ts
//	https://github.com/org/repo/blob/main/file.ts
//
// This is plain string substitution.
// URLs of any other shape produce meaningless results.
func RepoURL(rawURL string) string {
	u := strings.Replace(rawURL, _rawHost, _repoHost, 1)
	return strings.Replace(u, "/main/", "/blob/main/", 1)
}
