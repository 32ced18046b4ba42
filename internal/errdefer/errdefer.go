// Package errdefer runs cleanup in a defer statement
// without losing the error it returns.
package errdefer

import (
	"errors"
	"io"
)

// Do runs f and joins its error into *err.
//
//	defer errdefer.Do(&err, tx.Commit)
//
// err must point to a named return value.
func Do(err *error, f func() error) {
	*err = errors.Join(*err, f())
}

// Close closes c and joins its error into *err.
//
//	defer errdefer.Close(&err, res.Body)
func Close(err *error, c io.Closer) {
	Do(err, c.Close)
}
