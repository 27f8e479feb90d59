package linediff

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"gitnote/internal/note"
)

// Algorithms accepted by GitDiffer.
var Algorithms = []string{"myers", "minimal", "patience", "histogram"}

// GitDiffer computes line diffs by running `git diff --no-index -U0` on two
// temporary files and expanding the zero-context hunks into per-line changes.
type GitDiffer struct {
	gitCommand string
	algorithm  string
}

// NewGitDiffer creates a GitDiffer using the given git binary and diff algorithm.
// An empty algorithm means myers.
func NewGitDiffer(gitCommand, algorithm string) (*GitDiffer, error) {
	if gitCommand == "" {
		gitCommand = "git"
	}
	if algorithm == "" {
		algorithm = "myers"
	}
	known := false
	for _, a := range Algorithms {
		if a == algorithm {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown diff algorithm: %q", algorithm)
	}
	return &GitDiffer{gitCommand: gitCommand, algorithm: algorithm}, nil
}

// LineDiff returns the ordered line changes turning oldText into newText.
func (g *GitDiffer) LineDiff(oldText, newText string) ([]note.Change, error) {
	oldLines := note.SplitLines(oldText)
	newLines := note.SplitLines(newText)

	oldPath, err := writeLines("gitnote-old-*", oldLines)
	if err != nil {
		return nil, err
	}
	defer os.Remove(oldPath)
	newPath, err := writeLines("gitnote-new-*", newLines)
	if err != nil {
		return nil, err
	}
	defer os.Remove(newPath)

	out, err := g.run(oldPath, newPath)
	if err != nil {
		return nil, err
	}

	var hunks []*diff.Hunk
	if len(bytes.TrimSpace(out)) > 0 {
		fileDiffs, err := diff.ParseMultiFileDiff(out)
		if err != nil {
			return nil, fmt.Errorf("parsing git diff output: %w", err)
		}
		for _, fd := range fileDiffs {
			hunks = append(hunks, fd.Hunks...)
		}
		if len(hunks) == 0 {
			return nil, fmt.Errorf("git diff reported no line hunks for differing content")
		}
	}
	return expand(oldLines, newLines, hunks)
}

// run executes git diff. Exit status 1 only means the inputs differ.
func (g *GitDiffer) run(oldPath, newPath string) ([]byte, error) {
	cmd := exec.Command(g.gitCommand, "diff", "--no-index", "--no-color", "--no-ext-diff",
		"-U0", "--diff-algorithm="+g.algorithm, "--", oldPath, newPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return out, nil
		}
		return nil, fmt.Errorf("running git diff: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// expand turns zero-context hunks into a complete change list. Lines
// between hunks are equal on both sides.
func expand(oldLines, newLines []string, hunks []*diff.Hunk) ([]note.Change, error) {
	changes := make([]note.Change, 0, len(oldLines)+len(newLines))
	oi, ni := 0, 0
	for _, h := range hunks {
		// With -U0 an empty side's start line is the line *before* the change.
		oStart := int(h.OrigStartLine)
		if h.OrigLines > 0 {
			oStart--
		}
		nStart := int(h.NewStartLine)
		if h.NewLines > 0 {
			nStart--
		}
		oEnd := oStart + int(h.OrigLines)
		nEnd := nStart + int(h.NewLines)
		if oStart < oi || nStart < ni || oStart-oi != nStart-ni || oEnd > len(oldLines) || nEnd > len(newLines) {
			return nil, fmt.Errorf("hunk @@ -%d,%d +%d,%d @@ does not fit the inputs",
				h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines)
		}

		for oi < oStart {
			changes = append(changes, note.Equal(oi, ni, newLines[ni]))
			oi++
			ni++
		}
		changes = appendDeletes(changes, oldLines, oi, oEnd)
		changes = appendInserts(changes, newLines, ni, nEnd)
		oi, ni = oEnd, nEnd
	}

	if len(oldLines)-oi != len(newLines)-ni {
		return nil, fmt.Errorf("git diff left %d old and %d new lines unaccounted for", len(oldLines)-oi, len(newLines)-ni)
	}
	for oi < len(oldLines) {
		changes = append(changes, note.Equal(oi, ni, newLines[ni]))
		oi++
		ni++
	}
	return changes, nil
}

func writeLines(pattern string, lines []string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file for diff: %w", err)
	}
	defer f.Close()

	if len(lines) > 0 {
		if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("writing temp file for diff: %w", err)
		}
	}
	return f.Name(), nil
}

var _ note.Differ = (*GitDiffer)(nil)
