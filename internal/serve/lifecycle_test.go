package serve

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/controlfiles"
)

func TestTeardownIsIdempotent(t *testing.T) {
	control, err := controlfiles.Create()
	require.NoError(t, err)

	l := NewLifecycle(control)
	l.Teardown()

	_, err = os.Stat(control.Path)
	require.True(t, os.IsNotExist(err), "control directory must be gone after teardown")

	// The signal path and the normal exit path may both call Teardown; the
	// second call must not raise.
	require.NotPanics(t, l.Teardown)
}

func TestTeardownWithoutServerAttached(t *testing.T) {
	control, err := controlfiles.Create()
	require.NoError(t, err)

	l := NewLifecycle(control)
	require.NotPanics(t, l.Teardown)
}
