package html

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"strings"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/relative"
	xhtml "golang.org/x/net/html"
)

// _linkAttrs are the attributes that may hold a site path.
var _linkAttrs = map[string]struct{}{
	"href": {},
	"src":  {},
}

// relativeLinks rewrites site paths in href and src attributes of body
// into links relative to the page at site path from.
// Everything else is copied through byte for byte.
func relativeLinks(from string, body template.HTML) (template.HTML, error) {
	var out bytes.Buffer
	z := xhtml.NewTokenizer(strings.NewReader(string(body)))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", errtrace.Wrap(err)
			}
			return template.HTML(out.String()), nil

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			// Raw is invalidated by Token.
			raw := bytes.Clone(z.Raw())
			tok := z.Token()
			if rewriteLinks(from, tok.Attr) {
				out.WriteString(tok.String())
			} else {
				out.Write(raw)
			}

		default:
			out.Write(z.Raw())
		}
	}
}

// rewriteLinks reports whether any attribute was changed.
func rewriteLinks(from string, attrs []xhtml.Attribute) (changed bool) {
	for i, attr := range attrs {
		if attr.Namespace != "" {
			continue
		}
		if _, ok := _linkAttrs[attr.Key]; !ok || !relative.IsSitePath(attr.Val) {
			continue
		}
		attrs[i].Val = relative.Path(from, attr.Val)
		changed = true
	}
	return changed
}
