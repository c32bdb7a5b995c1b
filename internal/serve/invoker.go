package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
)

// ChildEnvFlag marks a build child spawned from the serve loop so it can
// suppress duplicate startup self-checks.
const ChildEnvFlag = "SITEGEN_SERVE_CHILD"

// BuildResult is the outcome of one build child invocation.
type BuildResult struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Success reports a clean zero-exit build.
func (r BuildResult) Success() bool { return r.ExitCode == 0 && !r.TimedOut }

// Invoker runs a full build as an isolated child process, mirroring the
// serve loop's content-generation options onto the child's argument set.
type Invoker struct {
	// Exe is the build-capable executable, resolved once during setup.
	Exe string
	// WorkDir is passed to the child as its site directory argument.
	WorkDir string
	// ConfigPaths are extra config files mirrored to the child.
	ConfigPaths []string
	// Timeout bounds one invocation; the child is killed when it elapses.
	Timeout time.Duration
	// Output receives the child's combined output as it arrives.
	Output io.Writer
}

// Invoke blocks until the child exits or the timeout elapses. A nonzero
// exit is not an error here; it is reported through the result so the serve
// loop can keep watching. The returned error is reserved for process
// management failures.
func (inv *Invoker) Invoke(ctx context.Context, opts build.Options) (BuildResult, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Exe, inv.buildArgs(opts)...)
	out := inv.Output
	if out == nil {
		out = os.Stdout
	}
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Env = append(os.Environ(), ChildEnvFlag+"=1")
	// Output pipes held open by grandchildren must not stall the kill path.
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	err := cmd.Run()
	res := BuildResult{Duration: time.Since(start)}

	switch {
	case err == nil:
		return res, nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("%w: spawn build child: %v", build.ErrProcess, err)
	}
}

// buildArgs derives the child argument set from the serve options.
func (inv *Invoker) buildArgs(opts build.Options) []string {
	args := []string{"build", inv.WorkDir}
	for _, p := range inv.ConfigPaths {
		args = append(args, "--config", p)
	}
	if opts.Drafts {
		args = append(args, "--drafts")
	}
	if opts.Page != "" {
		args = append(args, "--page", opts.Page)
	}
	if opts.Optimize {
		args = append(args, "--optimize")
		if opts.OptimizeMode != "" {
			args = append(args, "--optimize-mode", opts.OptimizeMode)
		}
	}
	if opts.ClearCache {
		args = append(args, "--clear-cache")
		if opts.ClearCachePattern != "" {
			args = append(args, "--clear-cache-pattern", opts.ClearCachePattern)
		}
	}
	if opts.Verbose {
		args = append(args, "--verbose")
	}
	return args
}

// probeAddr formats host:port for the liveness probe.
func probeAddr(host string, port int) string {
	return host + ":" + strconv.Itoa(port)
}
