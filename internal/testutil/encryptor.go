package testutil

import (
	"gitnote/internal/encryption"
	"gitnote/internal/note"
)

// NewTestEncryptor creates a deterministic encryptor for tests.
func NewTestEncryptor() note.Encryptor {
	return encryption.NewTestEncryptor()
}
