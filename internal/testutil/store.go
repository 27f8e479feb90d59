package testutil

import (
	"gitnote/internal/linediff"
	"gitnote/internal/store"
	"gitnote/internal/versionstore"
)

// NewTestRecordStore creates an empty in-memory record store.
func NewTestRecordStore() *store.MemoryStore {
	return store.NewMemoryStore()
}

// NewTestVersionStore creates an in-memory version store diffing with the
// difflib matcher.
func NewTestVersionStore() *versionstore.MemoryStore {
	return versionstore.NewMemoryStore(linediff.NewMatcher())
}
