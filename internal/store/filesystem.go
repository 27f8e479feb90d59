package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gitnote/internal/note"
)

// FileSystemStore keeps one JSON document per annotated file:
//
//	<home>/
//	  ab/
//	    cdef...   (record for identity "abcdef...")
type FileSystemStore struct {
	home string
}

// NewFileSystemStore creates a store rooted at home, creating it if needed.
func NewFileSystemStore(home string) (*FileSystemStore, error) {
	if err := os.MkdirAll(home, 0755); err != nil {
		return nil, fmt.Errorf("failed to create notes directory: %w", err)
	}
	return &FileSystemStore{home: home}, nil
}

func (s *FileSystemStore) path(identity string) (string, error) {
	dir, name, err := shardKey(identity)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.home, dir, name), nil
}

// Get returns the stored record bytes or note.ErrNoRecord.
func (s *FileSystemStore) Get(identity string) ([]byte, error) {
	path, err := s.path(identity)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, note.ErrNoRecord
		}
		return nil, fmt.Errorf("reading record %s: %w", identity, err)
	}
	return data, nil
}

// Put replaces the record for identity.
// Data is written to a temp file first so a crash never leaves a torn record.
func (s *FileSystemStore) Put(identity string, data []byte) error {
	destPath, err := s.path(identity)
	if err != nil {
		return err
	}
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

// List returns the identities of all stored records.
func (s *FileSystemStore) List() ([]string, error) {
	shards, err := os.ReadDir(s.home)
	if err != nil {
		return nil, fmt.Errorf("listing notes directory: %w", err)
	}
	var identities []string
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(s.home, shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("listing shard %s: %w", shard.Name(), err)
		}
		for _, e := range entries {
			if e.IsDir() || e.Name()[0] == '.' {
				continue
			}
			id := shard.Name() + e.Name()
			if _, _, err := shardKey(id); err == nil {
				identities = append(identities, id)
			}
		}
	}
	return identities, nil
}

func (s *FileSystemStore) Close() error { return nil }

var _ Backend = (*FileSystemStore)(nil)
