// Package controlfiles defines the per-run control directory shared between
// the serve loop (writer) and the router child (reader): live-reload client
// script, baseurl marker, change-timestamp marker and the headers file.
package controlfiles

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

//go:embed resources/livereload.js
var resources embed.FS

// Control file names inside the control directory.
const (
	LiveReloadScript = "livereload.js"
	BaseURLFile      = "baseurl"
	ChangesMarker    = "changes.flag"
	HeadersFile      = "headers.ini"
	ServerLog        = "server.log"
)

// Dir is a per-run control directory.
type Dir struct {
	Path string
}

// Create makes a fresh temporary control directory and copies the
// live-reload client script into it from the embedded resources.
func Create() (*Dir, error) {
	path, err := os.MkdirTemp("", "sitegen-serve-*")
	if err != nil {
		return nil, fmt.Errorf("create control dir: %w", err)
	}
	d := &Dir{Path: path}
	script, err := resources.ReadFile("resources/" + LiveReloadScript)
	if err != nil {
		return nil, fmt.Errorf("missing live-reload resource: %w", err)
	}
	if err := os.WriteFile(d.File(LiveReloadScript), script, 0o644); err != nil {
		return nil, fmt.Errorf("copy live-reload script: %w", err)
	}
	return d, nil
}

// Open wraps an existing control directory (the router child side).
func Open(path string) *Dir { return &Dir{Path: path} }

// File returns the absolute path of a named control file.
func (d *Dir) File(name string) string { return filepath.Join(d.Path, name) }

// Remove deletes the whole control directory. Missing directories are fine,
// which keeps teardown idempotent.
func (d *Dir) Remove() error {
	return os.RemoveAll(d.Path)
}

// WriteBaseURL writes "<configured-baseurl>;http://<host>:<port>/".
func (d *Dir) WriteBaseURL(configured, host string, port int) error {
	content := fmt.Sprintf("%s;http://%s:%d/", configured, host, port)
	return os.WriteFile(d.File(BaseURLFile), []byte(content), 0o644)
}

// ReadBaseURL returns the configured and local base URLs.
func (d *Dir) ReadBaseURL() (configured, local string, err error) {
	raw, err := os.ReadFile(d.File(BaseURLFile))
	if err != nil {
		return "", "", err
	}
	parts := strings.SplitN(strings.TrimSpace(string(raw)), ";", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed baseurl file %q", string(raw))
	}
	return parts[0], parts[1], nil
}

// TouchChanges overwrites the change-timestamp marker. The router compares
// its content between polls to decide when browsers should reload.
func (d *Dir) TouchChanges() error {
	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	return os.WriteFile(d.File(ChangesMarker), []byte(stamp), 0o644)
}

// ReadChanges returns the current change stamp, or empty when no successful
// build has happened yet.
func (d *Dir) ReadChanges() string {
	raw, err := os.ReadFile(d.File(ChangesMarker))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
