package pipeline

import (
	"html/template"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
)

// State is the shared build context. Each stage reads what its predecessors
// populated and adds its own contribution; no stage runs before all earlier
// stages have completed.
type State struct {
	Options   build.Options
	Config    *config.Config
	WorkDir   string
	OutputDir string
	Version   string

	Pages       []*Page
	Data        map[string]any
	StaticFiles []StaticFile
	Assets      []Asset
	// Taxonomies maps plural name -> term -> member pages.
	Taxonomies map[string]map[string][]*Page
	Menus      map[string][]MenuEntry
}

// Page is one content page flowing through the pipeline.
type Page struct {
	// SourcePath is relative to the pages directory; empty for generated
	// pages.
	SourcePath string
	// Path is the output location relative to the output directory.
	Path      string
	Title     string
	Section   string
	Slug      string
	Date      time.Time
	Draft     bool
	Layout    string
	Variables map[string]any
	// Terms maps taxonomy plural name -> terms from frontmatter.
	Terms map[string][]string
	Menus []string

	Markdown []byte
	Body     template.HTML
	Output   []byte

	// Pages holds the member list for generated list pages (sections,
	// taxonomy terms, home).
	Pages []*Page
}

// StaticFile is one file copied verbatim from the static directory.
type StaticFile struct {
	// Rel is the path relative to the static directory, also the output
	// location.
	Rel string
	Abs string
}

// Asset is a generated file saved next to the pages (feeds, manifests).
type Asset struct {
	Path    string
	Content []byte
}

// MenuEntry is one resolved entry of a named menu, sorted by weight.
type MenuEntry struct {
	ID     string
	Name   string
	URL    string
	Weight int
}
