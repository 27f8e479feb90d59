package versionstore

import (
	"fmt"
	"sync"

	"gitnote/internal/note"
)

// MemoryStore is an in-memory VersionStore, useful for testing.
// Files are set directly; every content ever returned by CurrentContent
// stays retrievable by id unless Forget is called.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	note.Differ
	files map[string]string // path -> content
	blobs map[string]string // id -> content
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(differ note.Differ) *MemoryStore {
	return &MemoryStore{
		Differ: differ,
		files:  make(map[string]string),
		blobs:  make(map[string]string),
	}
}

// SetFile replaces the working-tree content of path.
func (m *MemoryStore) SetFile(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// Forget drops a stored blob, as if history had been rewritten.
func (m *MemoryStore) Forget(contentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, contentID)
}

// CurrentContent returns the content of path and records it as a blob.
func (m *MemoryStore) CurrentContent(path string) (*note.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	id := BlobID([]byte(content))
	m.blobs[id] = content
	return &note.Blob{ID: id, Path: path, Content: content}, nil
}

// ContentByID returns a previously recorded blob.
func (m *MemoryStore) ContentByID(contentID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.blobs[contentID]
	if !ok {
		return "", fmt.Errorf("%w: blob %s", note.ErrContentUnavailable, contentID)
	}
	return content, nil
}

var _ note.VersionStore = (*MemoryStore)(nil)
