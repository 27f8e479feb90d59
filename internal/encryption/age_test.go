package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitnote/internal/config"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	cfg := config.EncryptionConfig{
		Type:         "age",
		IdentityPath: filepath.Join(t.TempDir(), "keys", "gitnote.key"),
	}
	return NewAgeEncryptor(cfg)
}

func TestAgeEncryptor_IsConfigured_BeforeSetup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)
	if e.IsConfigured() {
		t.Error("IsConfigured() = true before Setup, want false")
	}
}

func TestAgeEncryptor_Setup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	recipient, err := e.Setup()
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !strings.HasPrefix(recipient, "age1") {
		t.Errorf("Setup() recipient = %q, want age1 prefix", recipient)
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup, want true")
	}

	info, err := os.Stat(e.identityPath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("identity file mode = %o, want 600", perm)
	}

	got, err := e.Recipient()
	if err != nil {
		t.Fatalf("Recipient() error = %v", err)
	}
	if got != recipient {
		t.Errorf("Recipient() = %q, want %q", got, recipient)
	}

	if _, err := e.Setup(); err == nil {
		t.Error("second Setup() should refuse to overwrite the identity")
	}
}

func TestAgeEncryptor_EncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "record", input: []byte(`{"identity":"abc","reference":"a.txt","messages":[]}`)},
		{name: "empty", input: []byte{}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestAgeEncryptor(t)
			if _, err := e.Setup(); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}

			var encrypted bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &encrypted); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(tt.input) > 0 && bytes.Contains(encrypted.Bytes(), tt.input) {
				t.Error("encrypted output contains the plaintext")
			}

			var decrypted bytes.Buffer
			if err := e.Decrypt(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(decrypted.Bytes(), tt.input) {
				t.Errorf("round-trip failed: got %d bytes, want %d bytes", decrypted.Len(), len(tt.input))
			}
		})
	}
}

func TestAgeEncryptor_DecryptWithOtherIdentity(t *testing.T) {
	t.Parallel()

	alice := newTestAgeEncryptor(t)
	bob := newTestAgeEncryptor(t)
	for _, e := range []*AgeEncryptor{alice, bob} {
		if _, err := e.Setup(); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
	}

	var encrypted bytes.Buffer
	if err := alice.Encrypt(strings.NewReader("secret"), &encrypted); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	var out bytes.Buffer
	if err := bob.Decrypt(bytes.NewReader(encrypted.Bytes()), &out); err == nil {
		t.Error("Decrypt() with a different identity should return error")
	}
}

func TestAgeEncryptor_BeforeSetup(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	var buf bytes.Buffer
	if err := e.Encrypt(strings.NewReader("data"), &buf); err == nil {
		t.Error("Encrypt() before Setup should return error")
	}
	if err := e.Decrypt(strings.NewReader("data"), &buf); err == nil {
		t.Error("Decrypt() before Setup should return error")
	}
	if _, err := e.Recipient(); err == nil {
		t.Error("Recipient() before Setup should return error")
	}
}
