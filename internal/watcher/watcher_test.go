package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFirstScanReportsNoChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/a.md", "alpha")
	writeFile(t, root, "pages/b.md", "beta")

	w, err := New(root, Options{})
	require.NoError(t, err)

	cs, err := w.Scan()
	require.NoError(t, err)
	require.True(t, cs.Empty())
}

func TestRescanWithoutModificationsIsEmpty(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "alpha")

	w, err := New(root, Options{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		cs, err := w.Scan()
		require.NoError(t, err)
		require.True(t, cs.Empty())
	}
}

func TestClassificationIsMutuallyExclusive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.md", "keep")
	removed := writeFile(t, root, "gone.md", "gone")
	writeFile(t, root, "edit.md", "before")

	w, err := New(root, Options{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(removed))
	writeFile(t, root, "edit.md", "after")
	writeFile(t, root, "new.md", "new")

	cs, err := w.Scan()
	require.NoError(t, err)
	require.Equal(t, []string{"new.md"}, cs.Added)
	require.Equal(t, []string{"gone.md"}, cs.Removed)
	require.Equal(t, []string{"edit.md"}, cs.Modified)

	seen := map[string]int{}
	for _, p := range cs.Added {
		seen[p]++
	}
	for _, p := range cs.Removed {
		seen[p]++
	}
	for _, p := range cs.Modified {
		seen[p]++
	}
	for p, n := range seen {
		require.Equal(t, 1, n, "path %s classified %d times", p, n)
	}
}

func TestRenameWithIdenticalContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "stable")
	old := writeFile(t, root, "b.md", "same content")

	w, err := New(root, Options{})
	require.NoError(t, err)

	require.NoError(t, os.Rename(old, filepath.Join(root, "c.md")))

	cs, err := w.Scan()
	require.NoError(t, err)
	require.Equal(t, []string{"c.md"}, cs.Added)
	require.Equal(t, []string{"b.md"}, cs.Removed)
	require.Empty(t, cs.Modified)
	require.NotContains(t, cs.Added, "a.md")
	require.NotContains(t, cs.Modified, "a.md")
}

func TestTouchWithoutEditIsNotAChange(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.md", "alpha")

	w, err := New(root, Options{})
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	cs, err := w.Scan()
	require.NoError(t, err)
	require.True(t, cs.Empty())
}

func TestContentEditIsModified(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.md", "alpha")
	info, err := os.Stat(path)
	require.NoError(t, err)

	w, err := New(root, Options{})
	require.NoError(t, err)

	// Same length, same mtime: only the content hash can tell.
	require.NoError(t, os.WriteFile(path, []byte("aleph"), 0o644))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	cs, err := w.Scan()
	require.NoError(t, err)
	require.Equal(t, []string{"a.md"}, cs.Modified)
	require.Empty(t, cs.Added)
	require.Empty(t, cs.Removed)
}

func TestOutputDirectoryNeverAppears(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/a.md", "alpha")

	w, err := New(root, Options{Exclusions: []string{"_site"}})
	require.NoError(t, err)

	writeFile(t, root, "_site/index.html", "<html></html>")
	writeFile(t, root, "_site/deep/page.html", "<html></html>")

	cs, err := w.Scan()
	require.NoError(t, err)
	require.True(t, cs.Empty(), "output writes must not feed back into the watch loop: %+v", cs)

	// Rebuild output churn stays invisible on later scans too.
	writeFile(t, root, "_site/index.html", "<html>v2</html>")
	cs, err = w.Scan()
	require.NoError(t, err)
	require.True(t, cs.Empty())
}

func TestGitignorePatternsExcluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\ntmp/\n")
	writeFile(t, root, "pages/a.md", "alpha")

	w, err := New(root, Options{})
	require.NoError(t, err)

	writeFile(t, root, "debug.log", "noise")
	writeFile(t, root, "tmp/scratch.txt", "noise")

	cs, err := w.Scan()
	require.NoError(t, err)
	require.True(t, cs.Empty())
}

func TestNoIgnoreVCSOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\n")
	writeFile(t, root, "pages/a.md", "alpha")

	w, err := New(root, Options{NoIgnoreVCS: true})
	require.NoError(t, err)

	writeFile(t, root, "debug.log", "noise")

	cs, err := w.Scan()
	require.NoError(t, err)
	require.Equal(t, []string{"debug.log"}, cs.Added)
}
