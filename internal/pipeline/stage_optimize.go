package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// optimizeStage rewrites one asset class of the output tree in place. One
// instance exists per class; eligibility is gated on the optimize option and
// its optional mode.
type optimizeStage struct {
	name string
	mode string // html, css or js
}

func (st *optimizeStage) Name() string { return st.name }

func (st *optimizeStage) Init(*State) error { return nil }

func (st *optimizeStage) CanProcess(s *State) bool {
	if !s.Options.Optimize || s.Options.DryRun {
		return false
	}
	return s.Options.OptimizeMode == "" || s.Options.OptimizeMode == st.mode
}

func (st *optimizeStage) Process(ctx context.Context, s *State) error {
	ext := "." + st.mode
	return filepath.WalkDir(s.OutputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var out []byte
		switch st.mode {
		case "html":
			out, err = optimizeHTML(raw)
		case "css":
			out = optimizeCSS(raw)
		case "js":
			out = optimizeJS(raw)
		}
		if err != nil {
			return fmt.Errorf("optimize %s: %w", path, err)
		}
		if len(out) == 0 || len(out) >= len(raw) {
			return nil
		}
		return os.WriteFile(path, out, 0o644)
	})
}

// optimizeHTML parses the document and re-renders it without comment nodes.
func optimizeHTML(raw []byte) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	stripComments(doc)
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stripComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			stripComments(c)
		}
		c = next
	}
}

var cssComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// optimizeCSS drops comments and collapses whitespace runs. Good enough for
// a development loop; not a spec-compliant minifier.
func optimizeCSS(raw []byte) []byte {
	out := cssComment.ReplaceAll(raw, nil)
	fields := strings.Fields(string(out))
	return []byte(strings.Join(fields, " "))
}

// optimizeJS is deliberately conservative: blank lines and trailing
// whitespace only, so semantics cannot change.
func optimizeJS(raw []byte) []byte {
	lines := strings.Split(string(raw), "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return []byte(strings.Join(kept, "\n"))
}
