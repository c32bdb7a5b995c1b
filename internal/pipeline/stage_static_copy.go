package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

const copyConcurrency = 8

// staticCopyStage copies the static tree into the output directory. Copies
// inside the stage run concurrently with a bounded group; the stage itself
// still completes before the next one starts.
type staticCopyStage struct{}

func (st *staticCopyStage) Name() string { return StageStaticCopy }

func (st *staticCopyStage) Init(*State) error { return nil }

func (st *staticCopyStage) CanProcess(s *State) bool {
	return len(s.StaticFiles) > 0 && !s.Options.DryRun
}

func (st *staticCopyStage) Process(ctx context.Context, s *State) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)
	for _, f := range s.StaticFiles {
		f := f
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			dst := filepath.Join(s.OutputDir, filepath.FromSlash(f.Rel))
			if err := copyFile(f.Abs, dst); err != nil {
				return fmt.Errorf("copy static file %s: %w", f.Rel, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
