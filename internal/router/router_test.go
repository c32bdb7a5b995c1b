package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/controlfiles"
)

func newTestServer(t *testing.T) (*Server, string, *controlfiles.Dir) {
	t.Helper()
	root := t.TempDir()
	control, err := controlfiles.Create()
	require.NoError(t, err)
	t.Cleanup(func() { _ = control.Remove() })
	return New(root, control), root, control
}

func writeOutput(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestServesIndexWithLiveReloadInjection(t *testing.T) {
	srv, root, _ := newTestServer(t)
	writeOutput(t, root, "index.html", "<html><body><h1>hi</h1></body></html>")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<h1>hi</h1>")
	require.Contains(t, body, liveReloadPath, "HTML responses must carry the live-reload client")
	require.Less(t, strings.Index(body, liveReloadPath), strings.Index(body, "</body>"), "script goes before </body>")
}

func TestNonHTMLIsNotInjected(t *testing.T) {
	srv, root, _ := newTestServer(t)
	writeOutput(t, root, "css/site.css", "body{}")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/css/site.css", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
}

func TestHeadersFileApplied(t *testing.T) {
	srv, root, control := newTestServer(t)
	writeOutput(t, root, "downloads/file.txt", "data")
	require.NoError(t, control.WriteHeaders([]config.HeaderRule{
		{Path: "/*", Headers: []config.Header{{Key: "X-Frame-Options", Value: "SAMEORIGIN"}}},
		{Path: "/downloads", Headers: []config.Header{{Key: "Content-Disposition", Value: "attachment"}}},
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloads/file.txt", nil))
	require.Equal(t, "attachment", rec.Header().Get("Content-Disposition"), "longest matching section wins")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}

func TestHeaderSectionStopsAtSegmentBoundary(t *testing.T) {
	srv, root, control := newTestServer(t)
	writeOutput(t, root, "downloads-other/file.txt", "data")
	require.NoError(t, control.WriteHeaders([]config.HeaderRule{
		{Path: "/*", Headers: []config.Header{{Key: "X-Frame-Options", Value: "SAMEORIGIN"}}},
		{Path: "/downloads", Headers: []config.Header{{Key: "Content-Disposition", Value: "attachment"}}},
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloads-other/file.txt", nil))
	require.Empty(t, rec.Header().Get("Content-Disposition"), "a sibling path sharing the prefix is not covered")
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}

func TestChangesEndpointTracksMarker(t *testing.T) {
	srv, _, control := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/__sitegen/changes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())

	require.NoError(t, control.TouchChanges())
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/__sitegen/changes", nil))
	require.NotEmpty(t, rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestMissingFileIs404(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope.html", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
