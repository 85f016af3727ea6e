package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/looperdev/looper/internal/config"
	"github.com/looperdev/looper/internal/engine"
	"github.com/looperdev/looper/internal/history"
	"github.com/looperdev/looper/internal/hook"
	"github.com/looperdev/looper/internal/tui"
)

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [NUM_ITERATIONS TASK...]",
		Short: "Start a loop (called by the /loop slash command)",
		Long: `Start a loop. The first argument is the iteration budget, the rest is the
task text. With no arguments, a placeholder is written and the budget and
task are recovered from the session transcript on the first stop event;
only non-empty malformed arguments are a usage error.
The literal argument "stop" cancels the active loop instead.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := newWiring()
			if err := w.err; err != nil {
				return err
			}
			return runStart(w, cmd, strings.Join(args, " "))
		},
	}
}

func hookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Stop-hook handler (called by Claude Code, event JSON on stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := newWiring()
			if err := w.err; err != nil {
				return err
			}

			ev, err := hook.ReadEvent(cmd.InOrStdin())
			if err != nil {
				return err
			}

			d, err := w.engine().HandleStop(ev)
			if err != nil {
				return err
			}
			if d == nil {
				return nil
			}
			return d.Write(cmd.OutOrStdout())
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Cancel the active loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := newWiring()
			if err := w.err; err != nil {
				return err
			}
			return runCancel(w, cmd)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active loop and recent history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := newWiring()
			if err := w.err; err != nil {
				return err
			}
			return runStatus(w, cmd)
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of the active loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := newWiring()
			if err := w.err; err != nil {
				return err
			}
			return tui.Run(tui.New(w.store, w.history(), w.cfg.TUI.AccentColor))
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Install the /loop command and Stop hook into .claude",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			claudeDir, err := ensureClaudeDir(dir)
			if err != nil {
				return err
			}

			written, err := config.Install(claudeDir)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Everything already installed, nothing to do.")
				return nil
			}
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			return nil
		},
	}
}

// runStart dispatches one loop-start request: cancellation, placeholder,
// or a full start with budget and task.
func runStart(w *wiring, cmd *cobra.Command, raw string) error {
	trimmed := strings.TrimSpace(raw)

	switch trimmed {
	case engine.CancelArg:
		return runCancel(w, cmd)

	case "":
		// Slash-command wiring that cannot pass arguments; the first
		// hook invocation fills them in from the transcript.
		_, err := engine.StartPlaceholder(w.store)
		return err
	}

	total, task, err := engine.ParseArgs(raw)
	if err != nil {
		return err
	}

	started, err := engine.Start(w.store, total, task)
	if err != nil {
		return err
	}
	if !started {
		// An active loop is never clobbered; cancel first.
		return nil
	}
	w.record(history.Record{Kind: history.KindStarted, Iteration: 1, Total: total, Task: task})
	fmt.Fprintf(cmd.OutOrStdout(), "Loop started: %d iterations.\n", total)
	return nil
}

// runCancel deletes the state if present. Cancelling when nothing is
// active still reports success; the loop-end notification fires only
// when a loop was actually running.
func runCancel(w *wiring, cmd *cobra.Command) error {
	_, active, err := w.store.Load()
	if err != nil {
		return err
	}
	if err := w.store.Delete(); err != nil {
		return err
	}
	w.recordCancelled()
	if active {
		if n := w.notifier(); n != nil {
			n.LoopEnded("Loop ended: cancelled.")
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Loop stopped.")
	return nil
}

// runStatus prints the active loop summary and recent history.
func runStatus(w *wiring, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	styles := tui.NewStyles(w.cfg.TUI.AccentColor)

	s, active, err := w.store.Load()
	if err != nil {
		return err
	}
	switch {
	case !active:
		fmt.Fprintln(out, "No active loop.")
	case s.IsPlaceholder():
		fmt.Fprintln(out, styles.Counter.Render("Loop starting")+" (waiting for first stop event)")
	default:
		fmt.Fprintln(out, styles.Counter.Render(fmt.Sprintf("Loop active: iteration %d/%d", s.Iteration, s.Total)))
		fmt.Fprintln(out, styles.Task.Render(indent(s.Task())))
	}

	recs, err := w.history().Records()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}
	if len(recs) > 10 {
		recs = recs[len(recs)-10:]
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.Dim.Render("Recent"))
	for _, r := range recs {
		line := fmt.Sprintf("  %s  %s", r.Time.Format("2006-01-02 15:04:05"), r.Kind)
		if r.Total > 0 {
			line = fmt.Sprintf("%s %d/%d", line, r.Iteration, r.Total)
		}
		fmt.Fprintln(out, styles.Dim.Render(line))
	}
	return nil
}

// indent prefixes every task line for status display.
func indent(task string) string {
	lines := strings.Split(task, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

// ensureClaudeDir returns the project .claude directory for init, creating
// it in dir when no enclosing project has one.
func ensureClaudeDir(dir string) (string, error) {
	if found, err := config.FindClaudeDir(dir); err == nil {
		return found, nil
	}
	claudeDir := filepath.Join(dir, ".claude")
	if err := os.MkdirAll(claudeDir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", claudeDir, err)
	}
	return claudeDir, nil
}
