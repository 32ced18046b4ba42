package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"braces.dev/errtrace"
)

// server serves a generated site for local previews.
type server struct {
	Addr string // required
	Dir  string // required
	Log  *log.Logger

	// Listening, if set, is called with the address
	// the server is listening on.
	Listening func(net.Addr)
}

// Serve serves the site until ctx is cancelled.
func (s *server) Serve(ctx context.Context) error {
	logger := s.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return errtrace.Wrap(err)
	}
	logger.Printf("Serving %v on http://%v", s.Dir, ln.Addr())
	if s.Listening != nil {
		s.Listening(ln.Addr())
	}

	srv := http.Server{
		Handler:           siteHandler(s.Dir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return errtrace.Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errtrace.Wrap(err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return errtrace.Wrap(err)
	}
	return nil
}

// siteHandler serves files from dir without caching.
// Directories without an index.html are not listed.
func siteHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			index := filepath.Join(dir, filepath.FromSlash(r.URL.Path), "index.html")
			if _, err := os.Stat(index); err != nil {
				http.NotFound(w, r)
				return
			}
		}

		// Rebuilds replace files underneath the browser.
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		files.ServeHTTP(w, r)
	})
}
