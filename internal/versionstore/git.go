package versionstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gitnote/internal/note"
)

// GitStore reads content through the git binary. Current content is written
// to the object database with `git hash-object -w` so that it can be read
// back later with `git cat-file`.
type GitStore struct {
	note.Differ
	root       string
	gitCommand string
	charset    *Charset
}

// NewGitStore creates a GitStore for the repository rooted at root.
func NewGitStore(root, gitCommand string, charset *Charset, differ note.Differ) (*GitStore, error) {
	if gitCommand == "" {
		gitCommand = "git"
	}
	if _, err := exec.LookPath(gitCommand); err != nil {
		return nil, fmt.Errorf("git binary not available: %w", err)
	}
	return &GitStore{
		Differ:     differ,
		root:       root,
		gitCommand: gitCommand,
		charset:    charset,
	}, nil
}

// CurrentContent reads the working-tree file once and stores exactly those
// bytes with `git hash-object -w --stdin`, so the id always names the
// returned content even if the file changes meanwhile.
func (s *GitStore) CurrentContent(path string) (*note.Blob, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out, err := s.git(data, "hash-object", "-w", "--stdin", "--path="+path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	id := strings.TrimSpace(string(out))

	content, err := s.charset.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &note.Blob{ID: id, Path: path, Content: content}, nil
}

// ContentByID returns the content of a stored blob. Only git refusing the
// object counts as unavailable; failing to run git is reported as is.
func (s *GitStore) ContentByID(contentID string) (string, error) {
	out, err := s.git(nil, "cat-file", "blob", contentID)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", fmt.Errorf("%w: blob %s: %w", note.ErrContentUnavailable, contentID, err)
	}
	if err != nil {
		return "", fmt.Errorf("reading blob %s: %w", contentID, err)
	}
	content, err := s.charset.Decode(out)
	if err != nil {
		return "", fmt.Errorf("blob %s: %w", contentID, err)
	}
	return content, nil
}

// git runs a git command in the repository root, feeding stdin when given,
// and returns its stdout.
func (s *GitStore) git(stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.Command(s.gitCommand, args...)
	cmd.Dir = s.root
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

var _ note.VersionStore = (*GitStore)(nil)
