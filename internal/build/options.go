package build

// Options carries the per-run knobs of a single pipeline invocation. It is
// constructed once per build and never mutated while the run is in flight.
type Options struct {
	// Drafts includes pages marked draft in their frontmatter.
	Drafts bool
	// DryRun executes every stage but turns the save stages into no-ops.
	DryRun bool
	// Page restricts the run to a single page, identified by its path
	// relative to the pages directory. Empty means all pages.
	Page string
	// Optimize enables the optimization stages. Mode narrows them to a
	// single asset class ("html", "css", "js"); empty means all.
	Optimize     bool
	OptimizeMode string
	// ClearCache drops build-cache entries before the run. Pattern is a
	// glob over cache keys; empty means everything.
	ClearCache        bool
	ClearCachePattern string
	// Verbose mirrors the global CLI flag so child builds log at the same
	// level as the parent.
	Verbose bool
}
