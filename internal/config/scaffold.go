package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// hookCommand is the command registered for the Stop hook.
const hookCommand = "looper hook"

const commandTemplate = `---
description: Run a bounded work loop over a task ("/loop N TASK", or "/loop stop" to cancel)
allowed-tools: Bash(looper start:*)
---

!` + "`looper start`" + `

Loop armed. Begin working on the task: $ARGUMENTS
`

const configTemplate = `# loop.toml: looper configuration (optional; delete to use defaults)

[loop]
command = "loop"   # slash-command name searched for in the transcript

[history]
retention = 200    # loop-history records to keep; 0 = unlimited

[notifications]
url = ""           # ntfy.sh topic URL or any HTTP webhook (empty = disabled)
on_loop_end = true # notify when a loop ends

[tui]
accent_color = "#7D56F4"
`

// Install scaffolds the looper integration inside claudeDir: the /loop
// slash-command definition, the Stop hook registration in settings.json,
// and a commented default loop.toml. Existing files are left untouched
// except settings.json, which is merged. Returns the paths written.
func Install(claudeDir string) ([]string, error) {
	var written []string

	cmdDir := filepath.Join(claudeDir, "commands")
	if err := os.MkdirAll(cmdDir, 0755); err != nil {
		return written, fmt.Errorf("config: create %s: %w", cmdDir, err)
	}

	cmdPath := filepath.Join(cmdDir, "loop.md")
	if _, err := os.Stat(cmdPath); os.IsNotExist(err) {
		if writeErr := os.WriteFile(cmdPath, []byte(commandTemplate), 0644); writeErr != nil {
			return written, fmt.Errorf("config: write %s: %w", cmdPath, writeErr)
		}
		written = append(written, cmdPath)
	}

	tomlPath := filepath.Join(claudeDir, FileName)
	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		if writeErr := os.WriteFile(tomlPath, []byte(configTemplate), 0644); writeErr != nil {
			return written, fmt.Errorf("config: write %s: %w", tomlPath, writeErr)
		}
		written = append(written, tomlPath)
	}

	settingsPath := filepath.Join(claudeDir, "settings.json")
	changed, err := registerStopHook(settingsPath)
	if err != nil {
		return written, err
	}
	if changed {
		written = append(written, settingsPath)
	}

	return written, nil
}

// registerStopHook merges the looper Stop hook into settings.json,
// preserving everything already there. Reports whether the file was
// modified.
func registerStopHook(path string) (bool, error) {
	settings := map[string]any{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(data) > 0 {
		if jsonErr := json.Unmarshal(data, &settings); jsonErr != nil {
			return false, fmt.Errorf("config: parse %s: %w", path, jsonErr)
		}
	}

	hooks, _ := settings["hooks"].(map[string]any)
	if hooks == nil {
		hooks = map[string]any{}
	}
	stop, _ := hooks["Stop"].([]any)
	if stopHookRegistered(stop) {
		return false, nil
	}

	stop = append(stop, map[string]any{
		"hooks": []any{
			map[string]any{"type": "command", "command": hookCommand},
		},
	})
	hooks["Stop"] = stop
	settings["hooks"] = hooks

	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return false, fmt.Errorf("config: marshal settings: %w", err)
	}
	out = append(out, '\n')
	if writeErr := os.WriteFile(path, out, 0644); writeErr != nil {
		return false, fmt.Errorf("config: write %s: %w", path, writeErr)
	}
	return true, nil
}

// stopHookRegistered scans the Stop matcher list for the looper command.
func stopHookRegistered(stop []any) bool {
	for _, matcher := range stop {
		m, _ := matcher.(map[string]any)
		inner, _ := m["hooks"].([]any)
		for _, h := range inner {
			hm, _ := h.(map[string]any)
			if cmd, _ := hm["command"].(string); cmd == hookCommand {
				return true
			}
		}
	}
	return false
}
