package main

import (
	"fmt"
	"os"

	"github.com/looperdev/looper/internal/config"
	"github.com/looperdev/looper/internal/engine"
	"github.com/looperdev/looper/internal/history"
	"github.com/looperdev/looper/internal/notify"
	"github.com/looperdev/looper/internal/state"
	"github.com/looperdev/looper/internal/transcript"
)

// wiring bundles the per-invocation collaborators: the discovered .claude
// directory, its configuration, and the state store. Construction errors
// are held in err so commands can fail uniformly.
type wiring struct {
	claudeDir string
	cfg       *config.Config
	store     state.Store
	err       error
}

// newWiring discovers the project .claude directory from the working
// directory and loads its configuration.
func newWiring() *wiring {
	cwd, err := os.Getwd()
	if err != nil {
		return &wiring{err: fmt.Errorf("get working directory: %w", err)}
	}

	claudeDir, err := config.FindClaudeDir(cwd)
	if err != nil {
		return &wiring{err: err}
	}

	cfg, err := config.Load(claudeDir)
	if err != nil {
		return &wiring{err: err}
	}

	return &wiring{
		claudeDir: claudeDir,
		cfg:       cfg,
		store:     state.Store{Dir: claudeDir},
	}
}

// engine builds the stop decision engine with all collaborators wired.
func (w *wiring) engine() *engine.Engine {
	return &engine.Engine{
		Store:    w.store,
		Resolver: transcript.Resolver{CommandName: w.cfg.Loop.Command},
		History:  w.history(),
		Notifier: w.notifier(),
	}
}

// notifier returns the configured loop-end notifier, or nil when
// notifications are disabled or no URL is set.
func (w *wiring) notifier() engine.Notifier {
	if !w.cfg.Notifications.OnLoopEnd {
		return nil
	}
	n := notify.New(w.cfg.Notifications.URL)
	if n == nil {
		return nil
	}
	return n
}

// history returns the lifecycle log handle for the project.
func (w *wiring) history() *history.Log {
	return &history.Log{Dir: w.claudeDir, Retention: w.cfg.History.Retention}
}

// record appends a history record, best-effort.
func (w *wiring) record(rec history.Record) {
	if err := w.history().Append(rec); err != nil {
		fmt.Fprintf(os.Stderr, "looper: history: %v\n", err)
	}
}

// recordCancelled logs an explicit cancellation.
func (w *wiring) recordCancelled() {
	w.record(history.Record{Kind: history.KindCancelled})
}
