package linediff

import (
	"fmt"

	"gitnote/internal/config"
	"gitnote/internal/note"
)

// NewDifferFromConfig creates a Differ based on the diff engine setting.
func NewDifferFromConfig(cfg config.DiffConfig, gitCommand string) (note.Differ, error) {
	switch cfg.Engine {
	case "difflib", "":
		if cfg.Algorithm != "" {
			return nil, fmt.Errorf("diff algorithm %q requires the git engine", cfg.Algorithm)
		}
		return NewMatcher(), nil
	case "git":
		return NewGitDiffer(gitCommand, cfg.Algorithm)
	default:
		return nil, fmt.Errorf("unknown diff engine: %q", cfg.Engine)
	}
}
