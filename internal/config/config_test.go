package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		Charset:  "windows-1252",
		LogLevel: "debug",
		VersionStore: VersionStoreConfig{
			Type:       "objects",
			ObjectsDir: "/repo/.git/objects",
		},
		Diff: DiffConfig{Engine: "git", Algorithm: "histogram"},
		Storage: StorageConfig{
			Type:       "s3",
			S3Bucket:   "team-notes",
			S3Prefix:   "repo-a",
			S3Region:   "eu-west-1",
			S3Endpoint: "http://localhost:9000",
		},
		Encryption: EncryptionConfig{Type: "age", IdentityPath: "/keys/gitnote.key"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf, &Config{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if diff := cmp.Diff(original, got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_Read_KeepsDefaults(t *testing.T) {
	base := Default("/repo/.git/notes")
	input := "log_level = \"warn\"\n\n[storage]\ntype = \"sqlite\"\n"

	got, err := (&Manager{}).Read(strings.NewReader(input), base)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "warn")
	}
	if got.Storage.Type != "sqlite" {
		t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "sqlite")
	}
	if got.Storage.SQLitePath != "/repo/.git/notes/notes.db" {
		t.Errorf("Storage.SQLitePath = %q, want default", got.Storage.SQLitePath)
	}
	if got.Charset != "utf-8" {
		t.Errorf("Charset = %q, want %q", got.Charset, "utf-8")
	}
	if base.LogLevel != "info" {
		t.Errorf("base.LogLevel = %q, Read() must not modify base", base.LogLevel)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/data/notes")

	if cfg.VersionStore.Type != "git" {
		t.Errorf("VersionStore.Type = %q, want %q", cfg.VersionStore.Type, "git")
	}
	if cfg.Diff.Engine != "difflib" {
		t.Errorf("Diff.Engine = %q, want %q", cfg.Diff.Engine, "difflib")
	}
	if cfg.Storage.Type != "filesystem" {
		t.Errorf("Storage.Type = %q, want %q", cfg.Storage.Type, "filesystem")
	}
	if cfg.Storage.Dir != "/data/notes" {
		t.Errorf("Storage.Dir = %q, want %q", cfg.Storage.Dir, "/data/notes")
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want %q", cfg.Encryption.Type, "none")
	}
	if cfg.Encryption.IdentityPath != "/data/notes/keys/gitnote.key" {
		t.Errorf("Encryption.IdentityPath = %q, want %q", cfg.Encryption.IdentityPath, "/data/notes/keys/gitnote.key")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		if err := Init(path, Default(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		if err := Init(path, Default(dir)); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, Default(dir)); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		cfg := Default(dir)
		cfg.Storage.Type = "memory"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := Load(path, Default(dir))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Storage.Type != "memory" {
			t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "memory")
		}
	})

	t.Run("missing file yields base", func(t *testing.T) {
		base := Default("/x")
		got, err := Load(filepath.Join(t.TempDir(), "absent.toml"), base)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != base {
			t.Error("Load() should return base for a missing file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("charset = [unclosed"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, Default("/x")); err == nil {
			t.Fatal("Load() expected error for malformed file")
		}
	})
}

func TestReadFromFile_Missing(t *testing.T) {
	if _, err := ReadFromFile("/nonexistent/path/config.toml", Default("/x")); err == nil {
		t.Fatal("ReadFromFile() expected error for missing file")
	}
}
