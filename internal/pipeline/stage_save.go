package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// pagesSaveStage writes rendered pages under the output directory.
type pagesSaveStage struct{}

func (st *pagesSaveStage) Name() string { return StagePagesSave }

func (st *pagesSaveStage) Init(*State) error { return nil }

func (st *pagesSaveStage) CanProcess(s *State) bool {
	return len(s.Pages) > 0 && !s.Options.DryRun
}

func (st *pagesSaveStage) Process(ctx context.Context, s *State) error {
	for _, p := range s.Pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		dst := filepath.Join(s.OutputDir, filepath.FromSlash(p.Path))
		if err := writeFile(dst, p.Output); err != nil {
			return fmt.Errorf("save page %s: %w", p.Path, err)
		}
	}
	return nil
}

// assetsSaveStage writes generated assets (sitemap, feeds) under the output
// directory.
type assetsSaveStage struct{}

func (st *assetsSaveStage) Name() string { return StageAssetsSave }

func (st *assetsSaveStage) Init(*State) error { return nil }

func (st *assetsSaveStage) CanProcess(s *State) bool {
	return len(s.Assets) > 0 && !s.Options.DryRun
}

func (st *assetsSaveStage) Process(_ context.Context, s *State) error {
	for _, a := range s.Assets {
		dst := filepath.Join(s.OutputDir, filepath.FromSlash(a.Path))
		if err := writeFile(dst, a.Content); err != nil {
			return fmt.Errorf("save asset %s: %w", a.Path, err)
		}
	}
	return nil
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
