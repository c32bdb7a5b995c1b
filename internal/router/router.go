// Package router is the request handler of the dev server child. It serves
// the rendered output tree, applies the response headers declared in the
// headers control file and injects the live-reload client into HTML pages.
package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/sitegen/internal/controlfiles"
)

const (
	changesPath    = "/__sitegen/changes"
	liveReloadPath = "/__sitegen/livereload.js"
)

var liveReloadTag = []byte(`<script src="` + liveReloadPath + `"></script>`)

// Server serves one output tree with live reload.
type Server struct {
	root    string
	control *controlfiles.Dir
}

// New constructs a Server over the document root and control directory.
func New(root string, control *controlfiles.Dir) *Server {
	return &Server{root: root, control: control}
}

// Handler builds the chi routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(changesPath, s.handleChanges)
	r.Get(liveReloadPath, s.handleScript)
	r.Get("/*", s.handleFile)
	return r
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, host string, port int) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(host, fmt.Sprint(port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// handleChanges exposes the change-timestamp marker the client polls.
func (s *Server) handleChanges(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.control.ReadChanges()))
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	http.ServeFile(w, r, s.control.File(controlfiles.LiveReloadScript))
}

// handleFile resolves the URL to a file under the root, directory requests
// falling through to index.html.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if strings.Contains(rel, "..") {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	target := filepath.Join(s.root, filepath.FromSlash(rel))
	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
		info, err = os.Stat(target)
	}
	if errors.Is(err, os.ErrNotExist) {
		s.applyHeaders(w, r.URL.Path)
		http.NotFound(w, r)
		return
	}
	if err != nil || info.IsDir() {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	content, err := os.ReadFile(target)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ctype := mime.TypeByExtension(filepath.Ext(target))
	if ctype == "" {
		ctype = http.DetectContentType(content)
	}
	if strings.HasPrefix(ctype, "text/html") {
		content = injectLiveReload(content)
	}
	w.Header().Set("Content-Type", ctype)
	s.applyHeaders(w, r.URL.Path)
	_, _ = w.Write(content)
}

// applyHeaders applies the longest matching section of the headers file.
// "/*" and "/" both match everything; other patterns match the path itself
// or any path below it, never a sibling sharing the prefix.
func (s *Server) applyHeaders(w http.ResponseWriter, urlPath string) {
	sections, err := s.control.ReadHeaders()
	if err != nil {
		slog.Debug("Cannot read headers file", "error", err)
		return
	}
	var best *controlfiles.HeaderSection
	bestLen := -1
	for i := range sections {
		pattern := strings.TrimSuffix(sections[i].Path, "*")
		pattern = strings.TrimSuffix(pattern, "/")
		if sectionMatches(urlPath, pattern) && len(pattern) > bestLen {
			best = &sections[i]
			bestLen = len(pattern)
		}
	}
	if best == nil {
		return
	}
	for _, h := range best.Headers {
		w.Header().Set(h.Key, h.Value)
	}
}

// sectionMatches reports whether urlPath falls under pattern at a segment
// boundary: "/downloads" covers "/downloads" and "/downloads/x", not
// "/downloads-other".
func sectionMatches(urlPath, pattern string) bool {
	if pattern == "" {
		return true
	}
	return urlPath == pattern || strings.HasPrefix(urlPath, pattern+"/")
}

// injectLiveReload inserts the client script before </body>, or appends it
// when the page has no body close tag.
func injectLiveReload(content []byte) []byte {
	idx := bytes.LastIndex(content, []byte("</body>"))
	if idx < 0 {
		return append(content, liveReloadTag...)
	}
	out := make([]byte, 0, len(content)+len(liveReloadTag))
	out = append(out, content[:idx]...)
	out = append(out, liveReloadTag...)
	out = append(out, content[idx:]...)
	return out
}
