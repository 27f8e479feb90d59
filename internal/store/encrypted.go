package store

import (
	"bytes"
	"fmt"

	"gitnote/internal/note"
)

// EncryptedStore encrypts records before handing them to the wrapped backend
// and decrypts them on the way back.
type EncryptedStore struct {
	Backend
	encryptor note.Encryptor
}

// NewEncryptedStore wraps backend with encryptor.
func NewEncryptedStore(backend Backend, encryptor note.Encryptor) *EncryptedStore {
	return &EncryptedStore{Backend: backend, encryptor: encryptor}
}

func (s *EncryptedStore) Get(identity string) ([]byte, error) {
	ciphertext, err := s.Backend.Get(identity)
	if err != nil {
		return nil, err
	}
	var plaintext bytes.Buffer
	if err := s.encryptor.Decrypt(bytes.NewReader(ciphertext), &plaintext); err != nil {
		return nil, fmt.Errorf("decrypting record %s: %w", identity, err)
	}
	return plaintext.Bytes(), nil
}

func (s *EncryptedStore) Put(identity string, data []byte) error {
	var ciphertext bytes.Buffer
	if err := s.encryptor.Encrypt(bytes.NewReader(data), &ciphertext); err != nil {
		return fmt.Errorf("encrypting record %s: %w", identity, err)
	}
	return s.Backend.Put(identity, ciphertext.Bytes())
}

var _ Backend = (*EncryptedStore)(nil)
