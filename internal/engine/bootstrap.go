package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/looperdev/looper/internal/state"
)

// CancelArg is the loop-start argument that requests cancellation instead
// of starting a loop.
const CancelArg = "stop"

// ErrUsage wraps every malformed start request so callers can report all
// of them with a single usage message.
var ErrUsage = errors.New("expected: NUM_ITERATIONS TASK")

// ParseArgs splits a loop-start argument blob into the iteration budget
// and the task text. The budget is the first whitespace-delimited token;
// everything after it, embedded newlines included, is the task verbatim.
func ParseArgs(args string) (total int, task string, err error) {
	trimmed := strings.TrimSpace(args)
	if trimmed == "" {
		return 0, "", fmt.Errorf("missing iteration count: %w", ErrUsage)
	}

	cut := strings.IndexFunc(trimmed, unicode.IsSpace)
	if cut < 0 {
		return 0, "", fmt.Errorf("missing task: %w", ErrUsage)
	}

	total, convErr := strconv.Atoi(trimmed[:cut])
	if convErr != nil {
		return 0, "", fmt.Errorf("iteration count %q is not a number: %w", trimmed[:cut], ErrUsage)
	}
	if total < 1 {
		return 0, "", fmt.Errorf("iteration count must be at least 1: %w", ErrUsage)
	}

	task = strings.TrimLeftFunc(trimmed[cut:], unicode.IsSpace)
	if task == "" {
		return 0, "", fmt.Errorf("missing task: %w", ErrUsage)
	}
	return total, task, nil
}

// Start creates the initial state for a new loop: iteration 1, the given
// budget and task. An already-active loop is never clobbered; it is left
// untouched and reported via started=false, and the caller must cancel
// explicitly first.
func Start(st state.Store, total int, task string) (started bool, err error) {
	if _, active, loadErr := st.Load(); loadErr != nil {
		return false, loadErr
	} else if active {
		return false, nil
	}
	if err := st.Save(state.New(total, task)); err != nil {
		return false, err
	}
	return true, nil
}

// StartPlaceholder writes the pre-bootstrap placeholder used when the
// slash command cannot pass its arguments directly; the first hook
// invocation fills in the budget and task from the transcript. Like
// Start, it refuses to clobber an active loop.
func StartPlaceholder(st state.Store) (started bool, err error) {
	if _, active, loadErr := st.Load(); loadErr != nil {
		return false, loadErr
	} else if active {
		return false, nil
	}
	if err := st.Save(state.Placeholder()); err != nil {
		return false, err
	}
	return true, nil
}
