package pipeline

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

//go:embed layouts/*.html
var builtinLayouts embed.FS

// siteContext is the Site half of the template data, shared by every page.
type siteContext struct {
	Title       string
	Description string
	BaseURL     string
	Params      map[string]any
	Data        map[string]any
	Menus       map[string][]MenuEntry
	Taxonomies  map[string]map[string][]*Page
}

type renderContext struct {
	Site siteContext
	Page *Page
}

// pagesRenderStage renders every page through its layout. User templates in
// the layouts directory override the built-in ones; a page's frontmatter
// layout wins over the kind-derived default.
type pagesRenderStage struct {
	tmpl *template.Template
}

func (st *pagesRenderStage) Name() string { return StagePagesRender }

func (st *pagesRenderStage) Init(s *State) error {
	funcs := template.FuncMap{
		"pageURL": pageURL,
	}
	tmpl, err := template.New("layouts").Funcs(funcs).ParseFS(builtinLayouts, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("parse built-in layouts: %w", err)
	}
	userDir := filepath.Join(s.WorkDir, s.Config.Layouts.Directory)
	if dirExists(userDir) {
		entries, err := os.ReadDir(userDir)
		if err != nil {
			return fmt.Errorf("read layouts dir: %w", err)
		}
		hasHTML := false
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".html" {
				hasHTML = true
				break
			}
		}
		if hasHTML {
			tmpl, err = tmpl.ParseGlob(filepath.Join(userDir, "*.html"))
			if err != nil {
				return fmt.Errorf("parse user layouts: %w", err)
			}
		}
	}
	st.tmpl = tmpl
	return nil
}

func (st *pagesRenderStage) CanProcess(s *State) bool { return len(s.Pages) > 0 }

func (st *pagesRenderStage) Process(ctx context.Context, s *State) error {
	site := siteContext{
		Title:       s.Config.Title,
		Description: s.Config.Description,
		BaseURL:     s.Config.BaseURL,
		Params:      s.Config.Params,
		Data:        s.Data,
		Menus:       s.Menus,
		Taxonomies:  s.Taxonomies,
	}
	var buf bytes.Buffer
	for _, p := range s.Pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		layout := p.Layout
		if layout == "" {
			layout = "page"
		}
		if st.tmpl.Lookup(layout) == nil {
			return fmt.Errorf("page %s: layout %q not found", p.Path, layout)
		}
		buf.Reset()
		if err := st.tmpl.ExecuteTemplate(&buf, layout, renderContext{Site: site, Page: p}); err != nil {
			return fmt.Errorf("render page %s: %w", p.Path, err)
		}
		p.Output = append([]byte(nil), buf.Bytes()...)
	}
	return nil
}
