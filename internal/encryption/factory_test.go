package encryption

import (
	"testing"

	"gitnote/internal/config"
)

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EncryptionConfig
		wantNil bool
		wantErr bool
	}{
		{name: "none", cfg: config.EncryptionConfig{Type: "none"}, wantNil: true},
		{name: "empty type", cfg: config.EncryptionConfig{}, wantNil: true},
		{name: "age", cfg: config.EncryptionConfig{Type: "age", IdentityPath: "/keys/gitnote.key"}},
		{name: "age without identity", cfg: config.EncryptionConfig{Type: "age"}, wantNil: true, wantErr: true},
		{name: "test", cfg: config.EncryptionConfig{Type: "test"}},
		{name: "unknown", cfg: config.EncryptionConfig{Type: "rot13"}, wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEncryptorFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("NewEncryptorFromConfig() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}
