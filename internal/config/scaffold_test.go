package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstall(t *testing.T) {
	dir := t.TempDir()

	written, err := Install(dir)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(written) != 3 {
		t.Errorf("wrote %d paths, want 3: %v", len(written), written)
	}

	cmdPath := filepath.Join(dir, "commands", "loop.md")
	data, err := os.ReadFile(cmdPath)
	if err != nil {
		t.Fatalf("read %s: %v", cmdPath, err)
	}
	if !strings.Contains(string(data), "$ARGUMENTS") {
		t.Error("slash command must pass through $ARGUMENTS")
	}
	if !strings.Contains(string(data), "looper start") {
		t.Error("slash command must invoke looper start")
	}

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("loop.toml not written: %v", err)
	}

	settings := readSettings(t, dir)
	if !stopHookInSettings(settings) {
		t.Error("Stop hook not registered in settings.json")
	}
}

func TestInstall_Idempotent(t *testing.T) {
	dir := t.TempDir()
	if _, err := Install(dir); err != nil {
		t.Fatal(err)
	}

	written, err := Install(dir)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if len(written) != 0 {
		t.Errorf("second install wrote %v, want nothing", written)
	}

	settings := readSettings(t, dir)
	stop := settings["hooks"].(map[string]any)["Stop"].([]any)
	if len(stop) != 1 {
		t.Errorf("Stop hook registered %d times, want 1", len(stop))
	}
}

func TestInstall_PreservesExistingSettings(t *testing.T) {
	dir := t.TempDir()
	existing := `{
  "model": "opus",
  "hooks": {
    "PreToolUse": [{"hooks": [{"type": "command", "command": "lint-check"}]}]
  }
}`
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Install(dir); err != nil {
		t.Fatal(err)
	}

	settings := readSettings(t, dir)
	if settings["model"] != "opus" {
		t.Error("existing top-level settings must survive the merge")
	}
	hooks := settings["hooks"].(map[string]any)
	if _, ok := hooks["PreToolUse"]; !ok {
		t.Error("existing hooks must survive the merge")
	}
	if !stopHookInSettings(settings) {
		t.Error("Stop hook not added")
	}
}

func TestInstall_LeavesExistingCommandFile(t *testing.T) {
	dir := t.TempDir()
	cmdDir := filepath.Join(dir, "commands")
	if err := os.MkdirAll(cmdDir, 0755); err != nil {
		t.Fatal(err)
	}
	custom := "my customized loop command\n"
	if err := os.WriteFile(filepath.Join(cmdDir, "loop.md"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Install(dir); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(cmdDir, "loop.md"))
	if string(data) != custom {
		t.Error("existing loop.md must not be overwritten")
	}
}

func readSettings(t *testing.T, dir string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("read settings.json: %v", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("parse settings.json: %v", err)
	}
	return settings
}

func stopHookInSettings(settings map[string]any) bool {
	hooks, _ := settings["hooks"].(map[string]any)
	stop, _ := hooks["Stop"].([]any)
	return stopHookRegistered(stop)
}
