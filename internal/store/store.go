// Package store holds the RecordStore backends that persist serialized
// annotation records keyed by file identity.
package store

import (
	"fmt"

	"gitnote/internal/note"
)

// Backend is a RecordStore that can enumerate its records and owns
// resources released by Close.
type Backend interface {
	note.RecordStore

	// List returns the identities of all stored records.
	List() ([]string, error)
	Close() error
}

// shardKey splits an identity into the two-level layout used by every
// backend: the first two characters name a directory, the rest the entry.
func shardKey(identity string) (string, string, error) {
	if len(identity) < 3 {
		return "", "", fmt.Errorf("invalid identity %q", identity)
	}
	for _, c := range identity {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return "", "", fmt.Errorf("invalid identity %q", identity)
		}
	}
	return identity[:2], identity[2:], nil
}
