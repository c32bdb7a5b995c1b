package pipeline

import "strings"

// pageURL is the page's site-relative URL: pretty URLs keep the trailing
// slash, the root index collapses to the empty string.
func pageURL(p *Page) string {
	url := strings.TrimSuffix(p.Path, "index.html")
	return strings.TrimPrefix(url, "/")
}
