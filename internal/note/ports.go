package note

import "io"

// VersionStore supplies file content by path and by content address, and
// line-level diffs between texts. Implementations live in internal/versionstore.
type VersionStore interface {
	Differ

	// CurrentContent returns the working-tree content of a repository-relative
	// path together with its content address. The content must remain
	// retrievable through ContentByID afterwards.
	CurrentContent(path string) (*Blob, error)

	// ContentByID returns historical content by content address.
	// Fails with ErrContentUnavailable when the content is gone.
	ContentByID(contentID string) (string, error)
}

// RecordStore persists serialized annotation records keyed by identity.
// Implementations live in internal/store.
type RecordStore interface {
	// Get returns the stored bytes for identity, or ErrNoRecord.
	Get(identity string) ([]byte, error)

	// Put overwrites whatever is stored for identity.
	Put(identity string, data []byte) error
}

// Encryptor transforms serialized records on their way to and from a
// RecordStore. Implementations live in internal/encryption.
type Encryptor interface {
	Encrypt(r io.Reader, w io.Writer) error
	Decrypt(r io.Reader, w io.Writer) error
}
