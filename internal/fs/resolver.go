// Package fs maps user-supplied paths onto the repository working tree.
package fs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gitnote/internal/note"
)

// PathResolver turns paths typed by the user, relative to the directory the
// command runs in, into slash-separated paths relative to the repository root.
type PathResolver struct {
	workDir string
	root    string
}

// NewPathResolver finds the repository containing workDir with
// `git rev-parse --show-toplevel`.
func NewPathResolver(workDir, gitCommand string) (*PathResolver, error) {
	if gitCommand == "" {
		gitCommand = "git"
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	cmd := exec.Command(gitCommand, "rev-parse", "--show-toplevel")
	cmd.Dir = workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not in a git repository: %s",
			note.ErrIdentityResolution, workDir, strings.TrimSpace(stderr.String()))
	}

	root, err := filepath.EvalSymlinks(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, fmt.Errorf("canonicalizing repository root: %w", err)
	}
	return NewPathResolverAt(workDir, root), nil
}

// NewPathResolverAt creates a resolver for a known repository root.
func NewPathResolverAt(workDir, root string) *PathResolver {
	return &PathResolver{workDir: workDir, root: root}
}

// Root returns the canonical repository root.
func (r *PathResolver) Root() string {
	return r.root
}

// Resolve returns the repository-relative form of rawPath. The file must
// exist, be a regular file and live inside the working tree.
func (r *PathResolver) Resolve(rawPath string) (string, error) {
	p := rawPath
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.workDir, p)
	}

	canonical, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("%w: cannot find %q from %s", note.ErrIdentityResolution, rawPath, r.workDir)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", fmt.Errorf("stat path: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", note.ErrIdentityResolution, canonical)
	}

	rel, err := filepath.Rel(r.root, canonical)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not contained in repository %s", note.ErrIdentityResolution, canonical, r.root)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return "", fmt.Errorf("%w: %s is inside the git directory", note.ErrIdentityResolution, canonical)
	}
	return rel, nil
}
