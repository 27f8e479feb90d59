package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the configuration for gitnote in one repository.
type Config struct {
	Charset      string             `toml:"charset"`
	LogLevel     string             `toml:"log_level"`
	VersionStore VersionStoreConfig `toml:"version_store"`
	Diff         DiffConfig         `toml:"diff"`
	Storage      StorageConfig      `toml:"storage"`
	Encryption   EncryptionConfig   `toml:"encryption"`
}

// VersionStoreConfig selects where file content is hashed and kept.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VersionStoreConfig struct {
	Type       string `toml:"type"`                  // "git" (default), "objects" or "memory"
	GitCommand string `toml:"git_command,omitempty"` // used by type=git and the git diff engine
	ObjectsDir string `toml:"objects_dir,omitempty"` // only used for type=objects
}

// DiffConfig selects the line diff engine.
type DiffConfig struct {
	Engine    string `toml:"engine"`              // "difflib" (default) or "git"
	Algorithm string `toml:"algorithm,omitempty"` // git engine only: myers, minimal, patience, histogram
}

// StorageConfig represents configuration for the annotation record store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type string `toml:"type"` // "filesystem" (default), "sqlite", "s3" or "memory"

	// FileSystem-specific fields (only used when Type == "filesystem")
	Dir string `toml:"dir,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"`
}

// EncryptionConfig controls at-rest encryption of stored records.
type EncryptionConfig struct {
	Type         string `toml:"type"` // "none" (default), "age" or "test"
	IdentityPath string `toml:"identity_path,omitempty"`
}

// Default returns the configuration used when no config file exists.
// notesHome is the per-repository notes directory, usually <root>/.git/notes.
func Default(notesHome string) *Config {
	return &Config{
		Charset:  "utf-8",
		LogLevel: "info",
		VersionStore: VersionStoreConfig{
			Type:       "git",
			GitCommand: "git",
		},
		Diff: DiffConfig{
			Engine: "difflib",
		},
		Storage: StorageConfig{
			Type:       "filesystem",
			Dir:        notesHome,
			SQLitePath: filepath.Join(notesHome, "notes.db"),
		},
		Encryption: EncryptionConfig{
			Type:         "none",
			IdentityPath: filepath.Join(notesHome, "keys", "gitnote.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
// Keys absent from the input keep the values of base.
func (m *Manager) Read(r io.Reader, base *Config) (*Config, error) {
	cfg := *base
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path on top of base.
func ReadFromFile(path string, base *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, base)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config file at path, falling back to base when the file
// does not exist.
func Load(path string, base *Config) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	return ReadFromFile(path, base)
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
