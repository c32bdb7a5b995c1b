package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// pagesCreateStage parses frontmatter and derives identity for every loaded
// page: title, slug, section, date and the final output path. Drafts and the
// single-page filter are applied here so later stages only ever see the
// pages that will be published.
type pagesCreateStage struct{}

func (st *pagesCreateStage) Name() string { return StagePagesCreate }

func (st *pagesCreateStage) Init(*State) error { return nil }

func (st *pagesCreateStage) CanProcess(s *State) bool { return len(s.Pages) > 0 }

func (st *pagesCreateStage) Process(_ context.Context, s *State) error {
	kept := make([]*Page, 0, len(s.Pages))
	for _, p := range s.Pages {
		if err := createPage(p); err != nil {
			return fmt.Errorf("page %s: %w", p.SourcePath, err)
		}
		if p.Draft && !s.Options.Drafts {
			continue
		}
		if s.Options.Page != "" && p.SourcePath != s.Options.Page {
			continue
		}
		kept = append(kept, p)
	}
	s.Pages = kept
	return nil
}

func createPage(p *Page) error {
	vars, body, err := splitFrontmatter(p.Markdown)
	if err != nil {
		return err
	}
	p.Variables = vars
	p.Markdown = body

	base := strings.TrimSuffix(path.Base(p.SourcePath), path.Ext(p.SourcePath))
	p.Section = sectionOf(p.SourcePath)

	p.Title = stringVar(vars, "title")
	if p.Title == "" {
		p.Title = titleCaser.String(strings.ReplaceAll(base, "-", " "))
	}
	p.Slug = stringVar(vars, "slug")
	if p.Slug == "" {
		p.Slug = slugify(base)
	}
	if p.Slug == "" {
		return fmt.Errorf("cannot derive slug")
	}
	p.Draft = boolVar(vars, "draft")
	p.Layout = stringVar(vars, "layout")
	p.Date = dateVar(vars, "date")

	p.Terms = map[string][]string{}
	for key, v := range vars {
		if key == "tags" || key == "categories" {
			p.Terms[key] = stringsVar(v)
		}
	}
	if menu, ok := vars["menu"]; ok {
		p.Menus = stringsVar(menu)
	}

	// index.md maps onto its directory; everything else gets a pretty URL
	// directory of its own.
	switch {
	case base == "index" && p.Section == "":
		p.Path = "index.html"
	case base == "index":
		p.Path = path.Join(p.Section, "index.html")
	case p.Section == "":
		p.Path = path.Join(p.Slug, "index.html")
	default:
		p.Path = path.Join(p.Section, p.Slug, "index.html")
	}
	return nil
}

func sectionOf(sourcePath string) string {
	dir := path.Dir(sourcePath)
	if dir == "." {
		return ""
	}
	return dir
}

func stringVar(vars map[string]any, key string) string {
	if v, ok := vars[key].(string); ok {
		return v
	}
	return ""
}

func boolVar(vars map[string]any, key string) bool {
	v, ok := vars[key].(bool)
	return ok && v
}

func dateVar(vars map[string]any, key string) time.Time {
	switch v := vars[key].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func stringsVar(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
