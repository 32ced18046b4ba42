// Package pathtree stores values keyed by slash-separated site paths.
// A value set for a path is inherited by all its descendants
// unless a descendant sets its own value.
//
//	t.Set("docs/sophnet", X)
//	t.Set("docs/sophnet/code", Y)
//	t.Lookup("docs/sophnet/changelog") // == X
//	t.Lookup("docs/sophnet/code/go")   // == Y
//	t.Lookup("docs")                   // not found
package pathtree

import "strings"

const _sep = '/'

// Root is the starting point of the path tree.
// The zero-value of Root is an empty tree.
type Root[T any] struct {
	root node[T]
}

// Set adds a value to the tree under the given path,
// overwriting any value previously set for that exact path.
func (r *Root[T]) Set(p string, v T) {
	r.root.Set(p, &v)
}

// Lookup retrieves the value for the given path,
// falling back to the value of the closest ancestor.
//
// Lookup reports true if a value was found--even if it was inherited.
func (r *Root[T]) Lookup(p string) (v T, ok bool) {
	if got := r.root.Get(p, nil); got != nil {
		v = *got
		ok = true
	}
	return v, ok
}

type node[T any] struct {
	value    *T
	children map[string]*node[T]
}

func (n *node[T]) child(name string) *node[T] {
	if n.children == nil {
		n.children = make(map[string]*node[T])
	}

	c, ok := n.children[name]
	if !ok {
		c = new(node[T])
		n.children[name] = c
	}
	return c
}

func (n *node[T]) Set(p string, v *T) {
	if len(p) == 0 {
		n.value = v
		return
	}

	head, tail := split(p)
	n.child(head).Set(tail, v)
}

func (n *node[T]) Get(p string, current *T) *T {
	if n == nil {
		return current
	}
	if n.value != nil {
		current = n.value
	}
	if len(p) == 0 {
		return current
	}

	head, tail := split(p)
	return n.children[head].Get(tail, current)
}

func split(p string) (head, tail string) {
	p = strings.TrimLeft(p, string(_sep))
	head, tail = p, ""
	if idx := strings.IndexByte(p, _sep); idx >= 0 {
		head, tail = p[:idx], p[idx+1:]
	}
	return head, strings.TrimLeft(tail, string(_sep))
}
