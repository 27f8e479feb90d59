package store

import (
	"context"
	"fmt"

	"gitnote/internal/config"
	"gitnote/internal/note"
)

// NewRecordStoreFromConfig creates a Backend based on the storage config type,
// wrapped with encryptor when it is non-nil.
func NewRecordStoreFromConfig(ctx context.Context, cfg config.StorageConfig, encryptor note.Encryptor) (Backend, error) {
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if encryptor != nil {
		return NewEncryptedStore(backend, encryptor), nil
	}
	return backend, nil
}

func newBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case "filesystem", "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem storage requires dir to be set")
		}
		return NewFileSystemStore(cfg.Dir)
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite storage requires sqlite_path to be set")
		}
		return NewSQLiteStore(cfg.SQLitePath)
	case "s3":
		return NewS3Store(ctx, cfg)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
