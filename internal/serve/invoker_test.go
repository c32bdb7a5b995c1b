package serve

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/build"
)

func stubExecutable(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts are POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "stub.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestInvokeReportsNonzeroExitWithoutError(t *testing.T) {
	inv := &Invoker{
		Exe:     stubExecutable(t, "echo building; exit 3"),
		WorkDir: t.TempDir(),
	}
	var out bytes.Buffer
	inv.Output = &out

	res, err := inv.Invoke(context.Background(), build.Options{})
	require.NoError(t, err, "a nonzero exit is a result, not an invoker error")
	require.Equal(t, 3, res.ExitCode)
	require.False(t, res.Success())
	require.Contains(t, out.String(), "building", "child output must be streamed to the sink")
}

func TestInvokeSuccess(t *testing.T) {
	inv := &Invoker{
		Exe:     stubExecutable(t, "exit 0"),
		WorkDir: t.TempDir(),
		Output:  &bytes.Buffer{},
	}
	res, err := inv.Invoke(context.Background(), build.Options{})
	require.NoError(t, err)
	require.True(t, res.Success())
}

func TestInvokeTimeoutTerminatesChild(t *testing.T) {
	inv := &Invoker{
		Exe:     stubExecutable(t, "exec sleep 10"),
		WorkDir: t.TempDir(),
		Timeout: 200 * time.Millisecond,
		Output:  &bytes.Buffer{},
	}
	start := time.Now()
	res, err := inv.Invoke(context.Background(), build.Options{})
	require.NoError(t, err)
	require.True(t, res.TimedOut)
	require.False(t, res.Success())
	require.Less(t, time.Since(start), 5*time.Second, "the child must be killed, not waited out")
}

func TestInvokeSpawnFailureIsProcessError(t *testing.T) {
	inv := &Invoker{
		Exe:     filepath.Join(t.TempDir(), "does-not-exist"),
		WorkDir: t.TempDir(),
		Output:  &bytes.Buffer{},
	}
	_, err := inv.Invoke(context.Background(), build.Options{})
	require.ErrorIs(t, err, build.ErrProcess)
}

func TestBuildArgsMirrorOptions(t *testing.T) {
	inv := &Invoker{
		Exe:         "sitegen",
		WorkDir:     "/site",
		ConfigPaths: []string{"extra.yaml"},
	}
	args := inv.buildArgs(build.Options{
		Drafts:            true,
		Page:              "blog/post.md",
		Optimize:          true,
		OptimizeMode:      "css",
		ClearCache:        true,
		ClearCachePattern: "*.tmp",
		Verbose:           true,
	})
	require.Equal(t, []string{
		"build", "/site",
		"--config", "extra.yaml",
		"--drafts",
		"--page", "blog/post.md",
		"--optimize", "--optimize-mode", "css",
		"--clear-cache", "--clear-cache-pattern", "*.tmp",
		"--verbose",
	}, args)
}

func TestBuildArgsMinimal(t *testing.T) {
	inv := &Invoker{Exe: "sitegen", WorkDir: "/site"}
	require.Equal(t, []string{"build", "/site"}, inv.buildArgs(build.Options{}))
}
