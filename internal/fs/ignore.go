package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-repository file listing paths the watcher skips.
const IgnoreFileName = ".gitnoteignore"

// alwaysIgnored is applied on top of any configured patterns.
var alwaysIgnored = []string{".git/"}

type ignorePattern struct {
	glob     string
	fullPath bool // match the whole relative path instead of the basename
	dirOnly  bool // pattern ended in '/'
}

// IgnoreMatcher decides which working-tree paths the watcher skips.
//
// Patterns follow a small subset of gitignore: a pattern without '/' matches
// the basename at any depth, a pattern containing '/' matches the path from
// the repository root, and a trailing '/' restricts it to directories.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher parses raw patterns. Blank lines and '#' comments are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range append(append([]string{}, alwaysIgnored...), rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{}
		if strings.HasSuffix(raw, "/") {
			p.dirOnly = true
			raw = strings.TrimSuffix(raw, "/")
		}
		raw = strings.TrimPrefix(raw, "/")
		p.fullPath = strings.Contains(raw, "/")
		p.glob = raw
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether relativePath, a file or directory below the
// repository root, should be skipped.
func (m *IgnoreMatcher) Match(relativePath string, isDir bool) bool {
	if relativePath == "" {
		return false
	}
	normalized := filepath.ToSlash(relativePath)
	base := filepath.Base(relativePath)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		subject := base
		if p.fullPath {
			subject = normalized
		}
		if ok, err := filepath.Match(p.glob, subject); err == nil && ok {
			return true
		}
	}
	return false
}

// LoadIgnoreFile returns the raw lines of root/.gitnoteignore, or nil when
// the file does not exist.
func LoadIgnoreFile(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
