package cnav

import (
	"fmt"
	"os"
	"strings"
)

// Document is the in-memory text of one source file, split into lines.
// Read once, kept for the whole session.
type Document struct {
	Path  string
	lines []string
}

// ReadDocument loads a file from disk.
func ReadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return NewDocument(path, string(content)), nil
}

// NewDocument builds a Document from already-loaded text.
func NewDocument(path, content string) *Document {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &Document{Path: path, lines: lines}
}

// Line returns the zero-based line, if it exists.
func (d *Document) Line(i int) (string, bool) {
	if d == nil || i < 0 || i >= len(d.lines) {
		return "", false
	}
	return d.lines[i], true
}

// LineLen returns the length of the zero-based line, 0 when out of range.
func (d *Document) LineLen(i int) int {
	line, ok := d.Line(i)
	if !ok {
		return 0
	}
	return len(line)
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	if d == nil {
		return 0
	}
	return len(d.lines)
}
