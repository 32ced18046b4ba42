// Package nav holds the site's sidebar navigation:
// an ordered list of sections, each with an ordered list of links.
package nav

import (
	"fmt"
	"io"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"
)

// Section is a titled group of links in the sidebar.
type Section struct {
	Title string `yaml:"title"`
	Links []Link `yaml:"links"`
}

// Link is a single entry in the sidebar.
type Link struct {
	Title string `yaml:"title"`

	// Href is a site-relative path, e.g. "/docs/sophnet".
	Href string `yaml:"href"`
}

var _default = []Section{
	{
		Title: "让我们开始",
		Links: []Link{
			{Title: "导言", Href: "/"},
		},
	},
	{
		Title: "SophNet",
		Links: []Link{
			{Title: "概览", Href: "/docs/sophnet"},
			{Title: "代码", Href: "/docs/sophnet/code"},
			{Title: "更新日志", Href: "/docs/sophnet/changelog"},
		},
	},
}

// Default returns the built-in navigation of the site.
// The returned slice is a copy and may be modified freely.
func Default() []Section {
	return Clone(_default)
}

// Clone returns a deep copy of the given sections.
func Clone(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = Section{
			Title: s.Title,
			Links: append([]Link(nil), s.Links...),
		}
	}
	return out
}

// Load reads navigation sections from a YAML document
// with the following shape.
//
//	# nav.yaml
//	- title: SophNet
//	  links:
//	    - title: Overview
//	      href: /docs/sophnet
func Load(r io.Reader) ([]Section, error) {
	var sections []Section
	if err := yaml.NewDecoder(r).Decode(&sections); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errtrace.Wrap(fmt.Errorf("decode navigation: %w", err))
	}

	for i, s := range sections {
		if s.Title == "" {
			return nil, errtrace.Errorf("section %d: missing title", i)
		}
		for j, l := range s.Links {
			if l.Href == "" {
				return nil, errtrace.Errorf("section %q: link %d: missing href", s.Title, j)
			}
		}
	}
	return sections, nil
}

// Duplicates returns hrefs that appear more than once
// across all sections, in order of their second appearance.
//
// Duplicate hrefs are tolerated by the sidebar;
// this exists so that callers may warn about them.
func Duplicates(sections []Section) []string {
	seen := make(map[string]int)
	var dupes []string
	for _, s := range sections {
		for _, l := range s.Links {
			seen[l.Href]++
			if seen[l.Href] == 2 {
				dupes = append(dupes, l.Href)
			}
		}
	}
	return dupes
}
