// Package content loads documentation pages from a directory of
// Markdown files with optional YAML front matter.
package content

import (
	"bytes"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"braces.dev/errtrace"
	"github.com/sophnet/docsite/internal/flagvalue"
	"gopkg.in/yaml.v3"
)

// Page is a single Markdown document.
type Page struct {
	// Path is the site-relative path the page is served at,
	// e.g. "/" or "/docs/sophnet/code".
	Path string

	// File is the slash-separated path of the source file
	// inside the content directory.
	File string

	Meta Meta

	// Body is the Markdown source without front matter.
	Body []byte
}

// Meta is the front matter of a page.
type Meta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// ErrUnclosedFrontMatter indicates that a document opened a front matter
// block but never closed it.
var ErrUnclosedFrontMatter = errors.New("front matter is missing its closing '---'")

// Loader finds pages inside a file system.
type Loader struct {
	// Exclude holds glob patterns (see [path.Match])
	// matched against slash-separated file paths.
	// Matching files are skipped.
	Exclude flagvalue.Globs
}

// Load walks fsys and loads every *.md file in it,
// sorted by site path.
// It fails if two files map to the same site path,
// e.g. "docs/x.md" and "docs/x/index.md".
func (l *Loader) Load(fsys fs.FS) ([]*Page, error) {
	var pages []*Page
	files := make(map[string]string) // site path -> file
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}

		if l.Exclude.Match(p) {
			return nil
		}

		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}

		page, err := Parse(p, src)
		if err != nil {
			return errtrace.Errorf("%v: %w", p, err)
		}
		if other, ok := files[page.Path]; ok {
			return errtrace.Errorf("%v and %v are both served at %v", other, p, page.Path)
		}
		files[page.Path] = p
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Path < pages[j].Path
	})
	return pages, nil
}

// Parse builds a page from the contents of the given file.
func Parse(file string, src []byte) (*Page, error) {
	fm, body, err := SplitFrontMatter(src)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	var meta Meta
	if len(bytes.TrimSpace(fm)) > 0 {
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return nil, errtrace.Errorf("front matter: %w", err)
		}
	}

	return &Page{
		Path: SitePath(file),
		File: file,
		Meta: meta,
		Body: body,
	}, nil
}

var (
	_fmDelim = []byte("---")
	_newline = []byte("\n")
)

// SplitFrontMatter separates YAML front matter, delimited by '---' lines,
// from the Markdown body.
// Documents without front matter are returned as-is.
func SplitFrontMatter(src []byte) (fm, body []byte, err error) {
	src = bytes.ReplaceAll(src, []byte("\r\n"), _newline)

	first, rest, _ := bytes.Cut(src, _newline)
	if !bytes.Equal(bytes.TrimRight(first, " \t"), _fmDelim) {
		return nil, src, nil
	}

	// Scan lines until the closing delimiter.
	var off int
	for off <= len(rest) {
		line := rest[off:]
		end := bytes.IndexByte(line, '\n')
		if end >= 0 {
			line = line[:end]
		}
		if bytes.Equal(bytes.TrimRight(line, " \t"), _fmDelim) {
			fm = rest[:off]
			if end < 0 {
				return fm, nil, nil
			}
			return fm, rest[off+end+1:], nil
		}
		if end < 0 {
			break
		}
		off += end + 1
	}
	return nil, nil, ErrUnclosedFrontMatter
}

// SitePath maps a content file to the path it's served at.
//
//	index.md                 -> /
//	docs/sophnet/index.md    -> /docs/sophnet
//	docs/sophnet/code.md     -> /docs/sophnet/code
func SitePath(file string) string {
	p := strings.TrimSuffix(file, path.Ext(file))
	if path.Base(p) == "index" {
		p = path.Dir(p)
	}
	if p == "." {
		p = ""
	}
	return "/" + p
}
