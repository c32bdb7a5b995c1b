// Package serve implements the local development loop: one long-lived
// server child, a change watcher over the source tree and synchronous
// rebuilds through isolated build children.
package serve

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/controlfiles"
	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/watcher"
)

const (
	defaultInterval = time.Second
	probeTimeout    = 2 * time.Second
)

// Trigger labels why a build ran.
const (
	TriggerInitial   = "initial"
	TriggerChange    = "change"
	TriggerScheduled = "scheduled"
)

// Loop is the rebuild-and-serve state machine. All fields are fixed before
// Run; the loop itself is a single control goroutine, with concurrency
// coming only from the two child processes.
type Loop struct {
	Config      *config.Config
	WorkDir     string
	Options     build.Options
	ConfigPaths []string

	// Exe overrides the build-and-serve executable; empty means the
	// current binary.
	Exe string

	Host         string
	Port         int
	Interval     time.Duration
	Timeout      time.Duration
	OpenBrowser  bool
	NoIgnoreVCS  bool
	RebuildEvery time.Duration
	HistoryPath  string
	Output       io.Writer
}

// Run drives the loop until the context is canceled (normal, signal-driven
// termination) or a fatal failure occurs. Setup and server-liveness errors
// come back wrapped in their sentinel; a failed rebuild does not end the
// loop.
func (l *Loop) Run(ctx context.Context) error {
	if l.Interval <= 0 {
		l.Interval = defaultInterval
	}
	out := l.Output
	if out == nil {
		out = os.Stdout
	}

	// Starting: control files and executable resolution. Any failure here
	// is fatal before any process starts.
	exe := l.Exe
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return fmt.Errorf("%w: locate build-capable executable: %v", build.ErrSetup, err)
		}
	}
	control, err := controlfiles.Create()
	if err != nil {
		return fmt.Errorf("%w: %v", build.ErrSetup, err)
	}
	lifecycle := NewLifecycle(control)
	defer lifecycle.Teardown()

	if err := control.WriteBaseURL(l.Config.BaseURL, l.Host, l.Port); err != nil {
		return fmt.Errorf("%w: write baseurl marker: %v", build.ErrSetup, err)
	}
	if err := control.WriteHeaders(l.Config.Headers); err != nil {
		return fmt.Errorf("%w: write headers file: %v", build.ErrSetup, err)
	}

	store := l.openHistory()
	if store != nil {
		defer store.Close()
	}

	invoker := &Invoker{
		Exe:         exe,
		WorkDir:     l.WorkDir,
		ConfigPaths: l.ConfigPaths,
		Timeout:     l.Timeout,
		Output:      out,
	}

	// Building(initial): a failed first build still serves the stale tree
	// so the operator can see something; the failure is surfaced.
	l.runBuild(ctx, invoker, control, store, TriggerInitial, 0)

	// ServerUp.
	outputDir := l.outputDir()
	supervisor := &Supervisor{Exe: exe}
	server, err := supervisor.Start(ServerSpec{
		Root:       outputDir,
		ControlDir: control.Path,
		Host:       l.Host,
		Port:       l.Port,
		LogPath:    control.File(controlfiles.ServerLog),
		Verbose:    l.Options.Verbose,
	})
	if err != nil {
		return err
	}
	lifecycle.AttachServer(server)
	fmt.Fprintf(out, "Serving %s at http://%s\n", outputDir, probeAddr(l.Host, l.Port))
	if l.OpenBrowser {
		openBrowser(fmt.Sprintf("http://%s/", probeAddr(l.Host, l.Port)))
	}

	w, err := watcher.New(l.WorkDir, watcher.Options{
		Exclusions: []string{
			outputDir,
			filepath.Join(l.WorkDir, l.Config.Cache.Directory),
			filepath.Join(l.WorkDir, ".sitegen"),
		},
		NoIgnoreVCS: l.NoIgnoreVCS,
	})
	if err != nil {
		return fmt.Errorf("%w: initialize watcher: %v", build.ErrSetup, err)
	}

	wake := l.startNotify(ctx, outputDir)
	scheduled, stopScheduler := l.startScheduler()
	if stopScheduler != nil {
		defer stopScheduler()
	}

	// Watching ⇄ Rebuilding.
	for {
		select {
		case <-ctx.Done():
			// Stopping: signal-driven, normal termination.
			slog.Info("Shutting down")
			return nil
		case <-time.After(l.Interval):
		case <-wake:
		case <-scheduled:
			slog.Info("Scheduled rebuild")
			l.runBuild(ctx, invoker, control, store, TriggerScheduled, 0)
			continue
		}

		if !server.IsRunning() {
			return fmt.Errorf("%w: server process exited", build.ErrProcess)
		}
		if !probe(l.Host, l.Port) {
			return fmt.Errorf("%w: %s", build.ErrServerUnreachable, probeAddr(l.Host, l.Port))
		}

		cs, err := w.Scan()
		if err != nil {
			slog.Warn("Scan failed", "error", err)
			continue
		}
		if cs.Empty() {
			continue
		}

		slog.Info("Changes detected", "added", len(cs.Added), "removed", len(cs.Removed), "modified", len(cs.Modified))
		slog.Debug("Change details", "added", cs.Added, "removed", cs.Removed, "modified", cs.Modified)
		l.runBuild(ctx, invoker, control, store, TriggerChange, cs.Total())
	}
}

// runBuild performs one synchronous build: the watch loop blocks until the
// child exits, so builds never overlap. The headers file is regenerated
// afterwards regardless of the outcome; the change marker only moves on
// success.
func (l *Loop) runBuild(ctx context.Context, invoker *Invoker, control *controlfiles.Dir, store *history.Store, trigger string, changes int) {
	buildID := uuid.NewString()
	slog.Debug("Build starting", "build_id", buildID, "trigger", trigger)

	res, err := invoker.Invoke(ctx, l.Options)
	switch {
	case err != nil:
		slog.Error("Build child failed to run", "build_id", buildID, "error", err)
	case res.TimedOut:
		slog.Warn("Build timed out", "build_id", buildID, "timeout", l.Timeout)
	case !res.Success():
		slog.Warn("Build failed", "build_id", buildID, "exit_code", res.ExitCode)
	default:
		slog.Info("Build succeeded", "build_id", buildID, "duration", res.Duration)
		if err := control.TouchChanges(); err != nil {
			slog.Warn("Failed to update change marker", "error", err)
		}
	}

	if err := control.WriteHeaders(l.Config.Headers); err != nil {
		slog.Warn("Failed to regenerate headers file", "error", err)
	}

	if store != nil {
		rec := history.Record{
			BuildID:   buildID,
			Trigger:   trigger,
			StartedAt: time.Now().Add(-res.Duration),
			Duration:  res.Duration,
			Success:   err == nil && res.Success(),
			Changes:   changes,
		}
		if err := store.Append(ctx, rec); err != nil {
			slog.Debug("Failed to append build history", "error", err)
		}
	}
}

func (l *Loop) outputDir() string {
	dir := l.Config.Output.Directory
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(l.WorkDir, dir)
	}
	return dir
}

func (l *Loop) openHistory() *history.Store {
	path := l.HistoryPath
	if path == "" {
		dir := filepath.Join(l.WorkDir, ".sitegen")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Debug("Cannot create history directory", "error", err)
			return nil
		}
		path = filepath.Join(dir, "history.db")
	}
	store, err := history.Open(path)
	if err != nil {
		// History is a convenience; the loop works without it.
		slog.Debug("Build history disabled", "error", err)
		return nil
	}
	return store
}

// startNotify wires fsnotify as a wake-up accelerator for the watch loop.
// Events only shortcut the interval sleep; classification still comes from
// the hash scan. Failure to set it up degrades to pure polling.
func (l *Loop) startNotify(ctx context.Context, outputDir string) <-chan struct{} {
	wake := make(chan struct{}, 1)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Debug("fsnotify unavailable, polling only", "error", err)
		return wake
	}
	count := 0
	walkErr := filepath.WalkDir(l.WorkDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil //nolint:nilerr // unreadable subtrees fall back to polling
		}
		name := d.Name()
		if path != l.WorkDir && (name == ".git" || name == ".sitegen" || path == outputDir) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err == nil {
			count++
		}
		return nil
	})
	if walkErr != nil {
		slog.Debug("fsnotify setup incomplete", "error", walkErr)
	}
	slog.Debug("Watching directories", "count", count)

	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = fsw.Add(ev.Name)
					}
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				slog.Debug("fsnotify error", "error", err)
			}
		}
	}()
	return wake
}

// startScheduler sets up the optional fixed-interval full rebuild.
func (l *Loop) startScheduler() (<-chan struct{}, func()) {
	if l.RebuildEvery <= 0 {
		return nil, nil
	}
	trigger := make(chan struct{}, 1)
	sched, err := gocron.NewScheduler()
	if err != nil {
		slog.Warn("Scheduler unavailable", "error", err)
		return nil, nil
	}
	_, err = sched.NewJob(
		gocron.DurationJob(l.RebuildEvery),
		gocron.NewTask(func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		}),
		gocron.WithName("full-rebuild"),
	)
	if err != nil {
		slog.Warn("Cannot schedule periodic rebuild", "error", err)
		return nil, nil
	}
	sched.Start()
	return trigger, func() { _ = sched.Shutdown() }
}

// probe attempts one TCP connection to the server.
func probe(host string, port int) bool {
	conn, err := net.DialTimeout("tcp", probeAddr(host, port), probeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// openBrowser is best effort; a failure only logs.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Debug("Cannot open browser", "error", err)
	}
}
