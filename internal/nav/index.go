package nav

import (
	"strings"

	"github.com/sophnet/docsite/internal/pathtree"
)

// Entry identifies a link inside the navigation.
type Entry struct {
	Section int // index into the sections
	Link    int // index into the section's links
}

// Index answers which navigation entry a page belongs to.
//
// A page belongs to the link with the longest href
// that is equal to or an ancestor of the page's path.
// The root link ("/") only matches the root page.
type Index struct {
	tree pathtree.Root[Entry]
	root *Entry
}

// NewIndex builds an index over the given sections.
// If an href appears more than once, the first occurrence wins.
func NewIndex(sections []Section) *Index {
	var idx Index
	seen := make(map[string]struct{})
	for i, s := range sections {
		for j, l := range s.Links {
			key := trim(l.Href)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			e := Entry{Section: i, Link: j}
			if key == "" {
				idx.root = &e
				continue
			}
			idx.tree.Set(key, e)
		}
	}
	return &idx
}

// Locate returns the entry that the page at the given path belongs to.
func (idx *Index) Locate(path string) (Entry, bool) {
	key := trim(path)
	if key == "" {
		if idx.root != nil {
			return *idx.root, true
		}
		return Entry{}, false
	}
	return idx.tree.Lookup(key)
}

func trim(p string) string {
	return strings.Trim(p, "/")
}
