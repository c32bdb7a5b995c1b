// Package watcher detects source-tree changes between scans by content
// hashing. Detection is hash equality rather than modification time, so a
// touch without an edit never triggers a rebuild.
package watcher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Options tunes a Watcher.
type Options struct {
	// Exclusions are directories never scanned, given relative to the root
	// or absolute. The output directory must always be listed here;
	// watching it would feed rebuilds back into themselves.
	Exclusions []string
	// NoIgnoreVCS disables honoring .gitignore patterns.
	NoIgnoreVCS bool
}

// ChangeSet classifies the paths that changed since the previous scan. A
// path appears in at most one category. Paths are relative to the scan root,
// slash-separated and sorted.
type ChangeSet struct {
	Added    []string
	Removed  []string
	Modified []string
}

// Empty reports whether the scan found no changes.
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// Total is the number of changed paths across all categories.
func (c ChangeSet) Total() int {
	return len(c.Added) + len(c.Removed) + len(c.Modified)
}

// Watcher owns the baseline path→hash mapping. Not safe for concurrent use;
// the serve loop is its only caller and scans never overlap builds.
type Watcher struct {
	root       string
	exclusions []string
	matcher    gitignore.Matcher
	baseline   map[string]uint64
}

// New initializes a watcher over root and establishes the baseline. The
// first Scan after New reports no changes unless the tree changed in
// between.
func New(root string, opts Options) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}
	w := &Watcher{root: absRoot}
	for _, e := range opts.Exclusions {
		if !filepath.IsAbs(e) {
			e = filepath.Join(absRoot, e)
		}
		w.exclusions = append(w.exclusions, filepath.Clean(e))
	}
	if !opts.NoIgnoreVCS {
		w.matcher = loadGitignore(absRoot)
	}
	baseline, err := w.enumerate()
	if err != nil {
		return nil, fmt.Errorf("establish baseline: %w", err)
	}
	w.baseline = baseline
	return w, nil
}

// Root returns the absolute scan root.
func (w *Watcher) Root() string { return w.root }

// Scan re-enumerates the tree, classifies changes against the baseline and
// replaces the baseline with the new state.
func (w *Watcher) Scan() (ChangeSet, error) {
	current, err := w.enumerate()
	if err != nil {
		return ChangeSet{}, err
	}
	var cs ChangeSet
	for path, hash := range current {
		old, ok := w.baseline[path]
		switch {
		case !ok:
			cs.Added = append(cs.Added, path)
		case old != hash:
			cs.Modified = append(cs.Modified, path)
		}
	}
	for path := range w.baseline {
		if _, ok := current[path]; !ok {
			cs.Removed = append(cs.Removed, path)
		}
	}
	sort.Strings(cs.Added)
	sort.Strings(cs.Removed)
	sort.Strings(cs.Modified)
	w.baseline = current
	return cs, nil
}

func (w *Watcher) enumerate() (map[string]uint64, error) {
	files := map[string]uint64{}
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Files can vanish mid-scan; the next scan classifies them.
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != w.root && w.excluded(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || w.excluded(path, false) {
			return nil
		}
		hash, err := hashFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = hash
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.root, err)
	}
	return files, nil
}

func (w *Watcher) excluded(path string, isDir bool) bool {
	base := filepath.Base(path)
	if base == ".git" || base == ".hg" || base == ".svn" {
		return true
	}
	clean := filepath.Clean(path)
	for _, e := range w.exclusions {
		if clean == e || strings.HasPrefix(clean, e+string(filepath.Separator)) {
			return true
		}
	}
	if w.matcher != nil {
		rel, err := filepath.Rel(w.root, path)
		if err == nil && rel != "." {
			if w.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir) {
				return true
			}
		}
	}
	return false
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// loadGitignore parses the root .gitignore if present. Nested ignore files
// are not consulted; the dev loop only needs the common top-level patterns.
func loadGitignore(root string) gitignore.Matcher {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()
	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return nil
	}
	return gitignore.NewMatcher(patterns)
}
