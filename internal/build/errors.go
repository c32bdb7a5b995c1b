package build

import "errors"

// Sentinel domain errors used to classify high-level failures of the serve
// loop and the pipeline. They should always be wrapped with contextual
// information at the call site.
var (
	// ErrSetup covers pre-serve preparation failures: missing build-capable
	// executable, missing router resources, I/O errors writing control files.
	// Fatal; nothing has been started yet.
	ErrSetup = errors.New("sitegen: setup error")

	// ErrBuild covers a nonzero exit from a build child. Recoverable inside
	// the serve loop; fatal for a one-shot build command.
	ErrBuild = errors.New("sitegen: build error")

	// ErrServerUnreachable covers a failed liveness probe against the dev
	// server. Fatal; the loop cannot self-heal a dead server.
	ErrServerUnreachable = errors.New("sitegen: server unreachable")

	// ErrProcess covers unexpected child-process management failures
	// (spawn errors, a server child that cannot be started). Fatal.
	ErrProcess = errors.New("sitegen: process error")
)
