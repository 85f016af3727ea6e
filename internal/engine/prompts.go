package engine

import (
	"strconv"
	"strings"

	"github.com/looperdev/looper/internal/state"
)

// Prompt templates. Placeholders are substituted with strings.ReplaceAll,
// never parsed as a format string: the task text is arbitrary user input
// and must round-trip verbatim, braces, percent signs and all.
const (
	taskPlaceholder      = "{{task}}"
	iterationPlaceholder = "{{iteration}}"
	totalPlaceholder     = "{{total}}"
)

const initialPrompt = `Loop activated. Work incrementally: implement one piece, verify it, then stop. You will be re-prompted with the task after each iteration.

## Task

{{task}}
`

const workPrompt = `# Loop iteration {{iteration}} of {{total}}

You are in a coding loop. Your context may have been compacted — do not assume you remember prior iterations. Re-orient yourself by reading files and checking git status/log to understand what has already been done.

Work incrementally: pick one concrete piece of the task, implement it, and verify it works (run tests, lint, or inspect output). Then stop. Do not try to finish everything in one iteration.

## Early completion

If the task is genuinely and fully complete, output exactly the words TASK_COMPLETE as a standalone message (nothing else).

You MUST NOT output this unless the task is unequivocally done. Do not use it to escape the loop because you feel stuck, think the task is impossible, or want to stop for any other reason. If you are stuck, use the next iteration to try a different approach. The loop exists to give you multiple attempts — use them.

## Task

{{task}}
`

const verificationPrompt = `# Verification iteration

You indicated the task is complete. Before confirming, do a thorough review:

1. Re-read the original task requirements below.
2. Read through all code you wrote or modified.
3. Run the tests or otherwise verify the implementation works end-to-end.
4. Check for edge cases, missing requirements, or loose ends.

After your review, output exactly one of these keywords as a standalone message:

- REVIEW_OKAY — the task is fully and genuinely complete.
- REVIEW_INCOMPLETE — you found something incomplete or broken. Briefly describe what remains before the keyword.

## Task

{{task}}
`

const (
	exhaustedMessage = "Loop complete (iterations exhausted). Summarize what you accomplished."
	verifiedMessage  = "Loop complete (verified). Summarize what you accomplished."
)

// render substitutes the counters first and the task last, so the task
// bytes are never rescanned for placeholders.
func render(tmpl string, s state.State) string {
	out := strings.ReplaceAll(tmpl, iterationPlaceholder, strconv.Itoa(s.Iteration))
	out = strings.ReplaceAll(out, totalPlaceholder, strconv.Itoa(s.Total))
	return strings.ReplaceAll(out, taskPlaceholder, s.Task())
}
