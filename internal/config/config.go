// Package config locates the project's .claude directory and parses the
// optional loop.toml configuration inside it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file name inside the .claude directory.
const FileName = "loop.toml"

// DefaultAccentColor is the default watch-screen accent color (indigo).
const DefaultAccentColor = "#7D56F4"

// hexColorRe matches a 6-digit hex color string like "#7D56F4".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level loop.toml configuration.
type Config struct {
	Loop          LoopConfig          `toml:"loop"`
	History       HistoryConfig       `toml:"history"`
	Notifications NotificationsConfig `toml:"notifications"`
	TUI           TUIConfig           `toml:"tui"`
}

// LoopConfig controls how loop invocations are recognized.
type LoopConfig struct {
	// Command is the slash-command name the transcript fallback searches
	// for, without the leading slash.
	Command string `toml:"command"`
}

// HistoryConfig controls the loop history log.
type HistoryConfig struct {
	Retention int `toml:"retention"` // records to keep; 0 = unlimited
}

// NotificationsConfig controls the loop-end webhook.
type NotificationsConfig struct {
	URL       string `toml:"url"`
	OnLoopEnd bool   `toml:"on_loop_end"`
}

// TUIConfig controls the watch screen appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
}

// Defaults returns a Config with the built-in defaults.
func Defaults() Config {
	return Config{
		Loop:          LoopConfig{Command: "loop"},
		History:       HistoryConfig{Retention: 200},
		Notifications: NotificationsConfig{URL: "", OnLoopEnd: true},
		TUI:           TUIConfig{AccentColor: DefaultAccentColor},
	}
}

// Load reads loop.toml from the given .claude directory. A missing file
// yields the defaults. Unknown keys are rejected (likely typos).
func Load(claudeDir string) (*Config, error) {
	cfg := Defaults()
	path := filepath.Join(claudeDir, FileName)

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %v (possible typos?)", path, keys)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Loop.Command == "" {
		errs = append(errs, fmt.Errorf("loop.command must not be empty"))
	}
	if c.History.Retention < 0 {
		errs = append(errs, fmt.Errorf("history.retention must be >= 0 (0 = unlimited)"))
	}
	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. %q)", DefaultAccentColor))
	}
	if c.Notifications.URL != "" {
		u, parseErr := url.ParseRequestURI(c.Notifications.URL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("notifications.url must be a valid http or https URL"))
		}
	}

	return errors.Join(errs...)
}
