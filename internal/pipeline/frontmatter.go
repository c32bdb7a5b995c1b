package pipeline

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var frontmatterDelim = []byte("---")

// splitFrontmatter separates a leading YAML frontmatter block from the body.
// A document without a frontmatter block yields an empty map and the whole
// input as body.
func splitFrontmatter(raw []byte) (map[string]any, []byte, error) {
	vars := map[string]any{}
	trimmed := bytes.TrimLeft(raw, "\r\n")
	if !bytes.HasPrefix(trimmed, frontmatterDelim) {
		return vars, raw, nil
	}
	rest := trimmed[len(frontmatterDelim):]
	// Delimiter must be its own line.
	if len(rest) > 0 && rest[0] != '\n' && !bytes.HasPrefix(rest, []byte("\r\n")) {
		return vars, raw, nil
	}
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, nil, fmt.Errorf("unterminated frontmatter block")
	}
	block := rest[:end]
	body := rest[end+len("\n---"):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	if err := yaml.Unmarshal(block, &vars); err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return vars, body, nil
}
