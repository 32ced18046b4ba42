// Package codeblock implements the code viewer used by code-block tags.
//
// A [Viewer] displays source text with syntax highlighting,
// a link to the human-browsable version of the source,
// and a copy-to-clipboard action.
// The source text is either supplied inline
// or fetched once from a raw-content URL.
//
// Viewers move through three states:
//
//	Initial --(mount or update without inline code)--> Fetching
//	Fetching --(success)--> Resolved
//	Fetching --(failure)--> Initial
//
// Fetches are never cancelled.
// If the source URL changes while a fetch is in flight,
// the stale fetch still writes its result when it completes.
package codeblock
