package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

func TestBuildErrorKeepsStageAttribution(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	page := "---\ntitle: Broken\nlayout: missing\n---\nbody\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages", "index.md"), []byte(page), 0o644))

	cmd := &BuildCmd{Path: dir}
	err := cmd.Run(&Global{Version: "test"})
	require.Error(t, err)
	require.ErrorIs(t, err, build.ErrBuild)

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr, "the failing stage must survive the sentinel wrap")
	require.Equal(t, pipeline.StagePagesRender, stageErr.Stage)
}

func TestBuildSucceedsOnMinimalSite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	page := "---\ntitle: Home\n---\nhello\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages", "index.md"), []byte(page), 0o644))

	cmd := &BuildCmd{Path: dir}
	require.NoError(t, cmd.Run(&Global{Version: "test"}))
	require.FileExists(t, filepath.Join(dir, "_site", "index.html"))
}
