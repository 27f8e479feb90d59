package encryption

import (
	"fmt"

	"gitnote/internal/config"
	"gitnote/internal/note"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// It returns nil for "none": records are then stored as plain JSON.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (note.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		if cfg.IdentityPath == "" {
			return nil, fmt.Errorf("age encryption requires identity_path to be set")
		}
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
