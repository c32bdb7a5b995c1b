package controlfiles

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// HeaderSection is one parsed section of the headers file.
type HeaderSection struct {
	Path    string
	Headers []config.Header
}

// WriteHeaders regenerates the headers file from configuration. Sections
// are emitted in configuration order:
//
//	[/downloads]
//	Content-Disposition = "attachment"
func (d *Dir) WriteHeaders(rules []config.HeaderRule) error {
	var b strings.Builder
	for i, rule := range rules {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s]\n", rule.Path)
		for _, h := range rule.Headers {
			fmt.Fprintf(&b, "%s = %q\n", h.Key, h.Value)
		}
	}
	return os.WriteFile(d.File(HeadersFile), []byte(b.String()), 0o644)
}

// ReadHeaders parses the headers file, preserving section order. A missing
// file yields no sections.
func (d *Dir) ReadHeaders() ([]HeaderSection, error) {
	f, err := os.Open(d.File(HeadersFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var sections []HeaderSection
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			sections = append(sections, HeaderSection{Path: line[1 : len(line)-1]})
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || len(sections) == 0 {
			return nil, fmt.Errorf("malformed headers line %q", line)
		}
		unquoted, err := strconv.Unquote(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("malformed headers value %q: %w", line, err)
		}
		last := &sections[len(sections)-1]
		last.Headers = append(last.Headers, config.Header{
			Key:   strings.TrimSpace(key),
			Value: unquoted,
		})
	}
	return sections, scanner.Err()
}
