package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoClaudeDir is returned when no project .claude directory exists
// between the working directory and the user's home directory. It is a
// setup precondition, distinct from usage errors.
var ErrNoClaudeDir = fmt.Errorf("not in a project, or there is no .claude directory")

// FindClaudeDir walks upward from start looking for a .claude directory
// and returns its path. The walk stops before the user's home directory:
// a .claude in home itself is the global Claude configuration, not a
// project.
func FindClaudeDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", start, err)
	}
	home, _ := os.UserHomeDir()

	for {
		if dir == home {
			break
		}
		candidate := filepath.Join(dir, ".claude")
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w (searched up from %s)", ErrNoClaudeDir, start)
}
