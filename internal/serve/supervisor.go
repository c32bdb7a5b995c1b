package serve

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
)

// ServerSpec fixes the dev server parameters for the lifetime of the loop.
type ServerSpec struct {
	Root       string // document root (the output directory)
	ControlDir string
	Host       string
	Port       int
	LogPath    string // server stderr/stdout target, kept off the console
	Verbose    bool
}

// ServerProcess is the handle to the long-lived router child.
type ServerProcess struct {
	cmd     *exec.Cmd
	logFile *os.File
	done    chan struct{}
	waitErr error
}

// Supervisor spawns and owns exactly one server child. It never restarts
// it; a dead server is fatal to the serve loop.
type Supervisor struct {
	Exe string
}

// Start spawns the router child serving spec.Root at spec.Host:spec.Port.
func (s *Supervisor) Start(spec ServerSpec) (*ServerProcess, error) {
	logFile, err := os.Create(spec.LogPath)
	if err != nil {
		return nil, fmt.Errorf("%w: create server log: %v", build.ErrProcess, err)
	}

	args := []string{
		"router",
		"--root", spec.Root,
		"--control", spec.ControlDir,
		"--host", spec.Host,
		"--port", strconv.Itoa(spec.Port),
	}
	if spec.Verbose {
		args = append(args, "--verbose")
	}
	cmd := exec.Command(s.Exe, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("%w: spawn server child: %v", build.ErrProcess, err)
	}
	slog.Debug("Server child started", "pid", cmd.Process.Pid, "addr", probeAddr(spec.Host, spec.Port))

	p := &ServerProcess{cmd: cmd, logFile: logFile, done: make(chan struct{})}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// IsRunning reports whether the child is still alive.
func (p *ServerProcess) IsRunning() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Stop terminates the child: TERM first, KILL after a grace period. Safe to
// call on an already-exited process.
func (p *ServerProcess) Stop() {
	if p.IsRunning() {
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-p.done:
		case <-time.After(3 * time.Second):
			_ = p.cmd.Process.Kill()
			<-p.done
		}
	}
	if p.logFile != nil {
		_ = p.logFile.Close()
		p.logFile = nil
	}
}
