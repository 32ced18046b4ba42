package codeblock

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/errdefer"
)

// Fetcher retrieves source text from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher is a Fetcher that issues a single GET request.
// It does not retry.
type HTTPFetcher struct {
	// Client to issue requests with.
	// Defaults to http.DefaultClient.
	Client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// Fetch retrieves the body at url as text.
// Non-2xx responses and non-text bodies are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (_ string, err error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errtrace.Wrap(err)
	}

	res, err := client.Do(req)
	if err != nil {
		return "", errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", errtrace.Errorf("GET %v: %v", url, res.Status)
	}
	if ct := res.Header.Get("Content-Type"); !isText(ct) {
		return "", errtrace.Errorf("GET %v: unexpected content type %q", url, ct)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errtrace.Wrap(fmt.Errorf("read %v: %w", url, err))
	}
	return string(body), nil
}

// Source files served as raw content commonly use these types
// in addition to text/*.
var _textApplicationTypes = map[string]struct{}{
	"application/json":       {},
	"application/javascript": {},
	"application/xml":        {},
	"application/yaml":       {},
	"application/x-yaml":     {},
	"application/toml":       {},
	"application/x-sh":       {},
}

func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	_, ok := _textApplicationTypes[mt]
	return ok
}
