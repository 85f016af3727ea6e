// Package engine implements the stop-interception state machine: given
// the persisted loop state and the agent's stop event, it decides whether
// to force another turn, enter verification, or let the loop end.
package engine

import (
	"log"
	"strings"

	"github.com/looperdev/looper/internal/history"
	"github.com/looperdev/looper/internal/hook"
	"github.com/looperdev/looper/internal/keyword"
	"github.com/looperdev/looper/internal/state"
)

// Decide is the pure decision core. Given the current state and the
// classification of the agent's final message it produces the next action
// and next state.
//
// REVIEW_OKAY is checked before the budget: a verified loop ends as
// verified even when the review landed on the last budgeted turn, since
// it needs no further turn. Every other branch needs one, so exhaustion
// is checked next and a TASK_COMPLETE with no budget left cannot claim a
// verification turn.
func Decide(s state.State, kw keyword.Keyword) Outcome {
	next := s
	next.Iteration = s.Iteration + 1

	switch {
	case kw == keyword.ReviewOkay:
		return Outcome{Kind: Verified, Reason: verifiedMessage}
	case next.Iteration > s.Total:
		return Outcome{Kind: Exhausted, Reason: exhaustedMessage}
	case kw == keyword.TaskComplete:
		return Outcome{Kind: EnterVerification, Reason: render(verificationPrompt, next), Next: next}
	default:
		return Outcome{Kind: Continue, Reason: render(workPrompt, next), Next: next}
	}
}

// ArgResolver recovers the /loop slash-command arguments for a session.
// The transcript-backed implementation lives in internal/transcript.
type ArgResolver interface {
	LoopArgs(transcriptPath string) (args string, ok bool, err error)
}

// Notifier receives a short message when a loop ends.
type Notifier interface {
	LoopEnded(message string)
}

// Engine applies stop events to the persisted loop state. Store is
// required; the collaborators are optional and skipped when nil.
type Engine struct {
	Store    state.Store
	Resolver ArgResolver
	History  *history.Log
	Notifier Notifier
}

// HandleStop processes one stop event and returns the decision to emit,
// or nil when the event calls for no output at all. Nil decisions leave
// the persisted state untouched except for silent cleanup of a
// placeholder that cannot be resolved.
//
// The host delivers stop events for one session serially; this method is
// not safe to re-invoke with the same event (the iteration count would
// double-advance).
func (e *Engine) HandleStop(ev hook.StopEvent) (*hook.Decision, error) {
	s, ok, err := e.Store.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if ev.HookEventName != hook.EventStop {
		return nil, nil
	}

	first := false
	if s.IsPlaceholder() {
		resolved, ok := e.resolvePlaceholder(ev)
		if !ok {
			return nil, nil
		}
		s = resolved
		first = true
		e.record(history.KindStarted, s)
	}

	out := Decide(s, keyword.Find(ev.LastAssistantMessage))
	if first && out.Kind == Continue {
		// The very first turn gets the activation prompt instead of the
		// full work prompt.
		out.Reason = render(initialPrompt, out.Next)
	}

	if out.Terminal() {
		if err := e.Store.Delete(); err != nil {
			return nil, err
		}
		e.record(kindFor(out.Kind), s)
		e.notify(out, s)
	} else {
		if err := e.Store.Save(out.Next); err != nil {
			return nil, err
		}
		e.record(kindFor(out.Kind), out.Next)
	}

	return hook.Block(out.Reason), nil
}

// resolvePlaceholder turns the pre-bootstrap placeholder into a real
// state using the /loop arguments found in the transcript. Any failure
// (no resolver, no transcript, no matching entry, malformed arguments, or
// the literal "stop") removes the placeholder silently: a stray
// placeholder must never block a turn the user did not ask to loop.
func (e *Engine) resolvePlaceholder(ev hook.StopEvent) (state.State, bool) {
	cleanup := func() (state.State, bool) {
		if err := e.Store.Delete(); err != nil {
			log.Printf("looper: remove placeholder: %v", err)
		}
		return state.State{}, false
	}

	if e.Resolver == nil || ev.TranscriptPath == "" {
		return cleanup()
	}
	args, ok, err := e.Resolver.LoopArgs(ev.TranscriptPath)
	if err != nil || !ok {
		return cleanup()
	}
	if strings.TrimSpace(args) == "stop" {
		return cleanup()
	}
	total, task, err := ParseArgs(args)
	if err != nil {
		return cleanup()
	}
	return state.New(total, task), true
}

func kindFor(k Kind) history.Kind {
	switch k {
	case EnterVerification:
		return history.KindVerifying
	case Exhausted:
		return history.KindExhausted
	case Verified:
		return history.KindVerified
	default:
		return history.KindContinued
	}
}

// record appends a lifecycle event to the history log. History failures
// never fail the hook path; the decision still has to reach the host.
func (e *Engine) record(kind history.Kind, s state.State) {
	if e.History == nil {
		return
	}
	rec := history.Record{Kind: kind, Iteration: s.Iteration, Total: s.Total}
	if kind == history.KindStarted {
		rec.Task = s.Task()
	}
	if err := e.History.Append(rec); err != nil {
		log.Printf("looper: history: %v", err)
	}
}

func (e *Engine) notify(out Outcome, s state.State) {
	if e.Notifier == nil {
		return
	}
	switch out.Kind {
	case Exhausted:
		e.Notifier.LoopEnded("Loop ended: iterations exhausted.")
	case Verified:
		e.Notifier.LoopEnded("Loop ended: task verified complete.")
	}
}
