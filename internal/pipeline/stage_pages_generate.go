package pipeline

import (
	"context"
	"path"
	"sort"
	"strings"
)

// pagesGenerateStage appends generated pages: section index lists, taxonomy
// term lists and a home page when the content tree does not provide one.
// Generated pages carry no markdown; the render stage gives them the list
// layout.
type pagesGenerateStage struct{}

func (st *pagesGenerateStage) Name() string { return StagePagesGenerate }

func (st *pagesGenerateStage) Init(*State) error { return nil }

func (st *pagesGenerateStage) CanProcess(s *State) bool { return len(s.Pages) > 0 }

func (st *pagesGenerateStage) Process(_ context.Context, s *State) error {
	existing := map[string]bool{}
	sections := map[string][]*Page{}
	for _, p := range s.Pages {
		existing[p.Path] = true
		if p.Section != "" {
			sections[p.Section] = append(sections[p.Section], p)
		}
	}

	var generated []*Page

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		indexPath := path.Join(name, "index.html")
		if existing[indexPath] {
			continue
		}
		members := sections[name]
		sortByDate(members)
		generated = append(generated, &Page{
			Path:    indexPath,
			Title:   titleCaser.String(name),
			Section: name,
			Layout:  "list",
			Pages:   members,
		})
	}

	plurals := make([]string, 0, len(s.Taxonomies))
	for plural := range s.Taxonomies {
		plurals = append(plurals, plural)
	}
	sort.Strings(plurals)
	for _, plural := range plurals {
		terms := make([]string, 0, len(s.Taxonomies[plural]))
		for term := range s.Taxonomies[plural] {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			generated = append(generated, &Page{
				Path:   path.Join(plural, slugify(term), "index.html"),
				Title:  term,
				Layout: "list",
				Pages:  s.Taxonomies[plural][term],
			})
		}
	}

	if !existing["index.html"] {
		all := make([]*Page, len(s.Pages))
		copy(all, s.Pages)
		sortByDate(all)
		generated = append(generated, &Page{
			Path:   "index.html",
			Title:  s.Config.Title,
			Layout: "list",
			Pages:  all,
		})
	}

	s.Pages = append(s.Pages, generated...)
	s.Assets = append(s.Assets, sitemapAsset(s))
	return nil
}

// sitemapAsset builds a sitemap.xml over the final page set.
func sitemapAsset(s *State) Asset {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	base := strings.TrimSuffix(s.Config.BaseURL, "/")
	for _, p := range s.Pages {
		b.WriteString("  <url><loc>")
		b.WriteString(base + "/" + pageURL(p))
		b.WriteString("</loc>")
		if !p.Date.IsZero() {
			b.WriteString("<lastmod>" + p.Date.Format("2006-01-02") + "</lastmod>")
		}
		b.WriteString("</url>\n")
	}
	b.WriteString("</urlset>\n")
	return Asset{Path: "sitemap.xml", Content: []byte(b.String())}
}

func sortByDate(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Date.Equal(pages[j].Date) {
			return pages[i].Path < pages[j].Path
		}
		return pages[i].Date.After(pages[j].Date)
	})
}
