package note

import "strings"

// Blob is one version of a file's content together with its content address.
type Blob struct {
	ID      string // content address (git blob id)
	Path    string // repository-relative path, slash separated
	Content string
}

// Lines returns the content split into lines without terminators.
func (b *Blob) Lines() []string {
	return SplitLines(b.Content)
}

// Snippet returns the text of the zero-based line, or false if the line
// does not exist.
func (b *Blob) Snippet(line int) (string, bool) {
	lines := b.Lines()
	if line < 0 || line >= len(lines) {
		return "", false
	}
	return lines[line], true
}

// SplitLines splits text into lines. Line terminators (\n or \r\n) are
// stripped and a trailing terminator does not start an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
