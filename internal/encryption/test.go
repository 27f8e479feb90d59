package encryption

import (
	"bytes"
	"fmt"
	"io"

	"gitnote/internal/note"
)

// testHeader marks data written by TestEncryptor.
var testHeader = []byte("GNENC\x00\x00\x00")

// TestEncryptor is a deterministic encryptor for tests. It prepends a fixed
// header on Encrypt and strips it on Decrypt, so stored bytes differ from the
// plaintext record without any real cryptography.
type TestEncryptor struct{}

var _ note.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
