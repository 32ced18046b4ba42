// Package relative rewrites site paths so that generated pages
// link to each other without depending on where the site is hosted.
package relative

import "strings"

// Path returns a link from the page at site path from
// to the site path to.
//
// Both are slash-separated paths rooted at the site root,
// e.g. "/docs/sophnet" or "/_/css/main.css".
// Pages are written as directories with an index.html inside them,
// so from names a directory.
// A trailing slash on to is kept.
//
//	Path("/docs/sophnet", "/_/css/main.css") // "../../_/css/main.css"
//	Path("/", "/docs")                       // "docs"
//	Path("/docs", "/docs")                   // "."
func Path(from, to string) string {
	fromParts := split(from)
	toParts := split(to)

	n := 0
	for n < len(fromParts) && n < len(toParts) && fromParts[n] == toParts[n] {
		n++
	}

	parts := make([]string, 0, len(fromParts)-n+len(toParts)-n)
	for range fromParts[n:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[n:]...)
	if len(parts) == 0 {
		parts = append(parts, ".")
	}

	rel := strings.Join(parts, "/")
	if strings.HasSuffix(to, "/") && len(toParts) > 0 {
		rel += "/"
	}
	return rel
}

// IsSitePath reports whether href is a path inside the site
// (as opposed to a full URL or a fragment).
func IsSitePath(href string) bool {
	return strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//")
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
