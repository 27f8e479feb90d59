package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gitnote/internal/config"
	"gitnote/internal/fs"
)

const descriptionText = "This directory contains notes by `gitnote`"

// GetDefaults returns per-repository default paths, checking environment variables first.
// Environment variables:
//   - GITNOTE_HOME: notes directory (default: <root>/.git/notes)
//   - GITNOTE_CONFIG_PATH: config file location (default: <notes home>/config.toml)
func GetDefaults(root string) map[string]string {
	home := os.Getenv("GITNOTE_HOME")
	if home == "" {
		home = filepath.Join(root, ".git", "notes")
	}
	configPath := os.Getenv("GITNOTE_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(home, "config.toml")
	}
	return map[string]string{
		"notes_home":  home,
		"config_path": configPath,
		"log_dir":     filepath.Join(home, "log"),
	}
}

// Environment is everything a command learns about where it runs before
// any store is opened.
type Environment struct {
	Resolver   *fs.PathResolver
	NotesHome  string
	ConfigPath string
	LogDir     string
}

// Discover locates the repository containing workDir and prepares its notes home.
func Discover(workDir string) (*Environment, error) {
	resolver, err := fs.NewPathResolver(workDir, "git")
	if err != nil {
		return nil, err
	}
	return NewEnvironment(resolver)
}

// NewEnvironment derives the default paths for the repository of resolver
// and makes sure the notes home exists.
func NewEnvironment(resolver *fs.PathResolver) (*Environment, error) {
	defaults := GetDefaults(resolver.Root())
	env := &Environment{
		Resolver:   resolver,
		NotesHome:  defaults["notes_home"],
		ConfigPath: defaults["config_path"],
		LogDir:     defaults["log_dir"],
	}
	if err := initNotesHome(env.NotesHome); err != nil {
		return nil, err
	}
	return env, nil
}

// LoadConfig reads the config file, falling back to defaults when there is none.
func (e *Environment) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(e.ConfigPath, config.Default(e.NotesHome))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

func initNotesHome(home string) error {
	if err := os.MkdirAll(home, 0755); err != nil {
		return fmt.Errorf("creating notes directory: %w", err)
	}
	description := filepath.Join(home, "description")
	if _, err := os.Stat(description); os.IsNotExist(err) {
		if err := os.WriteFile(description, []byte(descriptionText), 0644); err != nil {
			return fmt.Errorf("writing notes description: %w", err)
		}
	}
	return nil
}
