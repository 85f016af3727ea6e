// Package state persists the loop record that marks a loop as active.
//
// The record lives at loop.json inside the project's .claude directory.
// Its presence is the "loop active" flag: there is no separate boolean,
// and deleting it is how a loop ends.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the state file name inside the .claude directory.
const FileName = "loop.json"

// State is the persisted loop record.
//
// Iteration counts turns already issued to the agent, starting at 1 for
// the turn that activated the loop. Prompt is the verbatim task text,
// never interpreted; it is nil only in the placeholder written by a bare
// `looper start`, before the first hook invocation resolves the real
// arguments from the transcript. Total is the iteration budget, fixed at
// loop start.
type State struct {
	Iteration int     `json:"iteration"`
	Prompt    *string `json:"prompt"`
	Total     int     `json:"total"`
}

// New builds the state for a freshly started loop.
func New(total int, task string) State {
	return State{Iteration: 1, Prompt: &task, Total: total}
}

// Placeholder builds the pre-bootstrap state whose prompt has not been
// resolved from the transcript yet.
func Placeholder() State {
	return State{}
}

// IsPlaceholder reports whether the prompt is still unresolved.
func (s State) IsPlaceholder() bool { return s.Prompt == nil }

// Task returns the task text, or "" for a placeholder.
func (s State) Task() string {
	if s.Prompt == nil {
		return ""
	}
	return *s.Prompt
}

// Store reads and writes the state file in one .claude directory. Every
// operation goes through an explicit handle; there is no process-global
// state.
type Store struct {
	Dir string // the project's .claude directory
}

// Path returns the location of the state file.
func (st Store) Path() string { return filepath.Join(st.Dir, FileName) }

// Load reads the state file. Absence is not an error: it means no loop is
// active. A file that exists but cannot be parsed is removed and likewise
// reported as absent; a stray loop.json from a crashed session must not
// fail hook invocations the user never asked to loop.
func (st Store) Load() (State, bool, error) {
	data, err := os.ReadFile(st.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("state: read %s: %w", st.Path(), err)
	}

	var s State
	if jsonErr := json.Unmarshal(data, &s); jsonErr != nil {
		_ = os.Remove(st.Path())
		return State{}, false, nil
	}
	return s, true, nil
}

// Save writes the full record. Uses a write-then-rename pattern so a
// racing reader never observes a partially-written file.
func (st Store) Save(s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(st.Dir, ".loop-*.tmp")
	if err != nil {
		return fmt.Errorf("state: create temp: %w", err)
	}
	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("state: write: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("state: close: %w", closeErr)
	}
	if renameErr := os.Rename(tmp.Name(), st.Path()); renameErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("state: finalize: %w", renameErr)
	}
	return nil
}

// Delete removes the state file. A missing file is success: cancellation
// is idempotent.
func (st Store) Delete() error {
	if err := os.Remove(st.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("state: delete %s: %w", st.Path(), err)
	}
	return nil
}
