package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"gitnote/internal/config"
	"gitnote/internal/note"
)

// AgeEncryptor implements note.Encryptor using filippo.io/age with an X25519
// identity kept in a single key file. Records are encrypted to the identity's
// own recipient, so whoever holds the key file can read every note.
type AgeEncryptor struct {
	identityPath string
}

var _ note.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates a new AgeEncryptor from configuration.
func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{identityPath: cfg.IdentityPath}
}

// Setup generates a new X25519 identity and writes it to the identity file
// in the same format as age-keygen. It refuses to overwrite an existing key.
func (e *AgeEncryptor) Setup() (string, error) {
	if e.IsConfigured() {
		return "", fmt.Errorf("identity file already exists at %s", e.identityPath)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating identity: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(e.identityPath), 0700); err != nil {
		return "", fmt.Errorf("creating key directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# public key: %s\n", identity.Recipient())
	fmt.Fprintf(&buf, "%s\n", identity)

	f, err := os.OpenFile(e.identityPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("creating identity file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("writing identity file: %w", err)
	}
	return identity.Recipient().String(), nil
}

// Recipient returns the public key matching the stored identity.
func (e *AgeEncryptor) Recipient() (string, error) {
	identity, err := e.loadIdentity()
	if err != nil {
		return "", err
	}
	return identity.Recipient().String(), nil
}

// Encrypt reads plaintext from r and writes age-encrypted ciphertext to w.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	identity, err := e.loadIdentity()
	if err != nil {
		return fmt.Errorf("loading identity: %w", err)
	}

	encWriter, err := age.Encrypt(w, identity.Recipient())
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	return nil
}

// Decrypt reads age-encrypted ciphertext from r and writes plaintext to w.
func (e *AgeEncryptor) Decrypt(r io.Reader, w io.Writer) error {
	identity, err := e.loadIdentity()
	if err != nil {
		return fmt.Errorf("loading identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}

	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}

	return nil
}

// IsConfigured returns true if the identity file exists.
func (e *AgeEncryptor) IsConfigured() bool {
	_, err := os.Stat(e.identityPath)
	return err == nil
}

// loadIdentity reads the identity file and parses the first X25519 identity.
func (e *AgeEncryptor) loadIdentity() (*age.X25519Identity, error) {
	data, err := os.ReadFile(e.identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}

	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			return x, nil
		}
	}
	return nil, fmt.Errorf("no X25519 identity found in %s", e.identityPath)
}
