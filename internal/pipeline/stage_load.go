package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// contentLoadStage enumerates the pages directory and reads raw page
// sources into the state. Frontmatter parsing happens later in pages/create.
type contentLoadStage struct {
	dir string
}

func (st *contentLoadStage) Name() string { return StageContentLoad }

func (st *contentLoadStage) Init(s *State) error {
	st.dir = filepath.Join(s.WorkDir, s.Config.Pages.Directory)
	return nil
}

func (st *contentLoadStage) CanProcess(s *State) bool { return dirExists(st.dir) }

func (st *contentLoadStage) Process(_ context.Context, s *State) error {
	exts := s.Config.Pages.Extensions
	return filepath.WalkDir(st.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != st.dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(exts, filepath.Ext(path)) {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read page %s: %w", path, err)
		}
		rel, err := filepath.Rel(st.dir, path)
		if err != nil {
			return err
		}
		s.Pages = append(s.Pages, &Page{
			SourcePath: filepath.ToSlash(rel),
			Markdown:   raw,
		})
		return nil
	})
}

// dataLoadStage parses YAML files under the data directory into a nested
// map keyed by the path segments, e.g. data/team/core.yaml -> Data["team"]["core"].
type dataLoadStage struct {
	dir string
}

func (st *dataLoadStage) Name() string { return StageDataLoad }

func (st *dataLoadStage) Init(s *State) error {
	st.dir = filepath.Join(s.WorkDir, s.Config.Data.Directory)
	s.Data = map[string]any{}
	return nil
}

func (st *dataLoadStage) CanProcess(s *State) bool { return dirExists(st.dir) }

func (st *dataLoadStage) Process(_ context.Context, s *State) error {
	return filepath.WalkDir(st.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := filepath.Ext(path)
		if d.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read data file %s: %w", path, err)
		}
		var value any
		if err := yaml.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("parse data file %s: %w", path, err)
		}
		rel, err := filepath.Rel(st.dir, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), ext)
		insertData(s.Data, strings.Split(key, "/"), value)
		return nil
	})
}

func insertData(m map[string]any, segments []string, value any) {
	if len(segments) == 1 {
		m[segments[0]] = value
		return
	}
	child, ok := m[segments[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[segments[0]] = child
	}
	insertData(child, segments[1:], value)
}

// staticLoadStage enumerates the static directory; the copy happens later so
// every stage in between can inspect what will be published.
type staticLoadStage struct {
	dir string
}

func (st *staticLoadStage) Name() string { return StageStaticLoad }

func (st *staticLoadStage) Init(s *State) error {
	st.dir = filepath.Join(s.WorkDir, s.Config.Static.Directory)
	return nil
}

func (st *staticLoadStage) CanProcess(s *State) bool { return dirExists(st.dir) }

func (st *staticLoadStage) Process(_ context.Context, s *State) error {
	return filepath.WalkDir(st.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(st.dir, path)
		if err != nil {
			return err
		}
		s.StaticFiles = append(s.StaticFiles, StaticFile{
			Rel: filepath.ToSlash(rel),
			Abs: path,
		})
		return nil
	})
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
