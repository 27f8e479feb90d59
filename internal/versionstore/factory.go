package versionstore

import (
	"fmt"
	"path/filepath"

	"gitnote/internal/config"
	"gitnote/internal/linediff"
	"gitnote/internal/note"
)

// NewVersionStoreFromConfig creates a VersionStore for the repository rooted
// at root based on the version store config type.
func NewVersionStoreFromConfig(cfg *config.Config, root string) (note.VersionStore, error) {
	differ, err := linediff.NewDifferFromConfig(cfg.Diff, cfg.VersionStore.GitCommand)
	if err != nil {
		return nil, err
	}
	charset, err := NewCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}

	switch cfg.VersionStore.Type {
	case "git", "":
		return NewGitStore(root, cfg.VersionStore.GitCommand, charset, differ)
	case "objects":
		objectsDir := cfg.VersionStore.ObjectsDir
		if objectsDir == "" {
			objectsDir = filepath.Join(root, ".git", "objects")
		}
		return NewObjectStore(root, objectsDir, charset, differ)
	case "memory":
		return NewMemoryStore(differ), nil
	default:
		return nil, fmt.Errorf("unknown version store type: %s", cfg.VersionStore.Type)
	}
}
