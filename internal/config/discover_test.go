package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindClaudeDir(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", root)

	project := filepath.Join(root, "work", "myproject")
	nested := filepath.Join(project, "src", "deep")
	claudeDir := filepath.Join(project, ".claude")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(claudeDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("found from project root", func(t *testing.T) {
		got, err := FindClaudeDir(project)
		if err != nil {
			t.Fatalf("FindClaudeDir: %v", err)
		}
		if got != claudeDir {
			t.Errorf("got %q, want %q", got, claudeDir)
		}
	})

	t.Run("found from nested directory", func(t *testing.T) {
		got, err := FindClaudeDir(nested)
		if err != nil {
			t.Fatalf("FindClaudeDir: %v", err)
		}
		if got != claudeDir {
			t.Errorf("got %q, want %q", got, claudeDir)
		}
	})

	t.Run("home .claude is not a project", func(t *testing.T) {
		// A .claude directly in $HOME is the global Claude config; the
		// walk must stop before reaching it.
		if err := os.MkdirAll(filepath.Join(root, ".claude"), 0755); err != nil {
			t.Fatal(err)
		}
		outside := filepath.Join(root, "elsewhere")
		if err := os.MkdirAll(outside, 0755); err != nil {
			t.Fatal(err)
		}

		_, err := FindClaudeDir(outside)
		if !errors.Is(err, ErrNoClaudeDir) {
			t.Errorf("err = %v, want ErrNoClaudeDir", err)
		}
	})
}

func TestFindClaudeDir_NotFound(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", root)
	dir := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	_, err := FindClaudeDir(dir)
	if !errors.Is(err, ErrNoClaudeDir) {
		t.Errorf("err = %v, want ErrNoClaudeDir", err)
	}
}

func TestFindClaudeDir_FileNamedClaudeIgnored(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", root)
	dir := filepath.Join(root, "proj")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	// A plain file named .claude does not count.
	if err := os.WriteFile(filepath.Join(dir, ".claude"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := FindClaudeDir(dir)
	if !errors.Is(err, ErrNoClaudeDir) {
		t.Errorf("err = %v, want ErrNoClaudeDir", err)
	}
}
