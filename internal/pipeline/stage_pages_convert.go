package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// pagesConvertStage converts every page's markdown body to HTML.
type pagesConvertStage struct {
	md goldmark.Markdown
}

func (st *pagesConvertStage) Name() string { return StagePagesConvert }

func (st *pagesConvertStage) Init(*State) error {
	st.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return nil
}

func (st *pagesConvertStage) CanProcess(s *State) bool { return len(s.Pages) > 0 }

func (st *pagesConvertStage) Process(ctx context.Context, s *State) error {
	var buf bytes.Buffer
	for _, p := range s.Pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		buf.Reset()
		if err := st.md.Convert(p.Markdown, &buf); err != nil {
			return fmt.Errorf("convert page %s: %w", p.SourcePath, err)
		}
		p.Body = template.HTML(buf.String()) //nolint:gosec // site-author content
	}
	return nil
}
