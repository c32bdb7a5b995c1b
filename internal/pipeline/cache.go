package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// clearCacheDir removes cache entries whose base name matches pattern, or
// the whole directory when pattern is empty. A missing cache directory is
// not an error.
func clearCacheDir(dir, pattern string) error {
	if pattern == "" {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove cache dir %s: %w", dir, err)
		}
		return nil
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return fmt.Errorf("bad cache pattern %q: %w", pattern, err)
		}
		if ok {
			return os.Remove(path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
