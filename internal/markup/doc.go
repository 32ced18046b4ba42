// Package markup renders documentation pages written in Markdown
// extended with block-level tags:
//
//	{% callout type="warning" title="Heads up" %}
//	Markdown content, which may contain other tags.
//	{% /callout %}
//
//	{% code-block rawUrl="https://raw.githubusercontent.com/org/repo/main/a.go" language="go" /%}
//
// Tags must appear on a line of their own.
// Tags inside fenced code blocks are left alone.
//
// Attribute values are double-quoted strings, numbers, or true/false.
// Every tag and attribute must be declared in a [tags.Registry].
// Problems found while checking a document are reported as Diagnostics.
// Critical diagnostics reject the document;
// warnings are logged, and the offending attribute
// falls back to its default.
package markup
