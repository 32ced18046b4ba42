// Package iotest routes output produced during tests into the test log.
package iotest

import (
	"bytes"
	"log"
	"testing"
)

// Logger builds a *log.Logger that writes each message
// to t.Logf, so that it only shows up for failing or verbose tests.
func Logger(t testing.TB) *log.Logger {
	return log.New(&writer{t: t}, "", 0)
}

type writer struct{ t testing.TB }

func (w *writer) Write(b []byte) (int, error) {
	w.t.Helper()
	w.t.Logf("%s", bytes.TrimSuffix(b, []byte("\n")))
	return len(b), nil
}
