package serve

import (
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/sitegen/internal/controlfiles"
)

// Lifecycle owns teardown of everything the serve loop created. Teardown is
// the single entry point for both the signal path and normal exit, and is
// idempotent: the second call is a no-op and never raises.
type Lifecycle struct {
	mu      sync.Mutex
	once    sync.Once
	control *controlfiles.Dir
	server  *ServerProcess
}

// NewLifecycle wraps the control directory created during setup.
func NewLifecycle(control *controlfiles.Dir) *Lifecycle {
	return &Lifecycle{control: control}
}

// AttachServer registers the server child once it exists.
func (l *Lifecycle) AttachServer(p *ServerProcess) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.server = p
}

// Teardown stops the server child and removes the control directory.
// Cleanup failures are reported, never returned; they must not mask the
// fatal error that triggered teardown.
func (l *Lifecycle) Teardown() {
	l.once.Do(func() {
		l.mu.Lock()
		server := l.server
		l.mu.Unlock()
		if server != nil {
			server.Stop()
		}
		if l.control != nil {
			if err := l.control.Remove(); err != nil {
				slog.Warn("Failed to remove control directory", "path", l.control.Path, "error", err)
			}
		}
		slog.Debug("Teardown complete")
	})
}
