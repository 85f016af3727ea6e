package engine

import (
	"strings"
	"testing"

	"github.com/looperdev/looper/internal/keyword"
	"github.com/looperdev/looper/internal/state"
)

func TestDecide_Continue(t *testing.T) {
	s := state.New(3, "write hello world")

	out := Decide(s, keyword.None)
	if out.Kind != Continue {
		t.Fatalf("Kind = %v, want Continue", out.Kind)
	}
	if out.Terminal() {
		t.Error("Continue must not be terminal")
	}
	if out.Next.Iteration != 2 {
		t.Errorf("Next.Iteration = %d, want 2", out.Next.Iteration)
	}
	if out.Next.Total != 3 || out.Next.Task() != "write hello world" {
		t.Errorf("prompt/total must be unchanged, got %+v", out.Next)
	}
	if !strings.Contains(out.Reason, "write hello world") {
		t.Error("work prompt must contain the task text")
	}
	if !strings.Contains(out.Reason, "iteration 2 of 3") {
		t.Errorf("work prompt must state the iteration, got header %q", firstLine(out.Reason))
	}
	if !strings.Contains(out.Reason, "TASK_COMPLETE") {
		t.Error("work prompt must explain the completion sentinel")
	}
	if !strings.Contains(out.Reason, "MUST NOT") {
		t.Error("work prompt must warn against escaping the loop")
	}
}

func TestDecide_ReviewIncompleteContinues(t *testing.T) {
	s := state.New(5, "the task")
	s.Iteration = 3

	out := Decide(s, keyword.ReviewIncomplete)
	if out.Kind != Continue {
		t.Fatalf("Kind = %v, want Continue", out.Kind)
	}
	if out.Next.Iteration != 4 {
		t.Errorf("Next.Iteration = %d, want 4", out.Next.Iteration)
	}
	if !strings.Contains(out.Reason, "the task") {
		t.Error("work prompt must contain the task text")
	}
}

func TestDecide_EnterVerification(t *testing.T) {
	s := state.New(5, "build the parser")
	s.Iteration = 2

	out := Decide(s, keyword.TaskComplete)
	if out.Kind != EnterVerification {
		t.Fatalf("Kind = %v, want EnterVerification", out.Kind)
	}
	if out.Terminal() {
		t.Error("verification entry must not end the loop")
	}
	if out.Next.Iteration != 3 {
		t.Errorf("Next.Iteration = %d, want 3", out.Next.Iteration)
	}
	if !strings.Contains(out.Reason, "Verification") {
		t.Error("verification prompt must mention Verification")
	}
	if !strings.Contains(out.Reason, "build the parser") {
		t.Error("verification prompt must contain the task text")
	}
	if !strings.Contains(out.Reason, "REVIEW_OKAY") || !strings.Contains(out.Reason, "REVIEW_INCOMPLETE") {
		t.Error("verification prompt must name both review sentinels")
	}
}

func TestDecide_Verified(t *testing.T) {
	s := state.New(5, "task")
	s.Iteration = 3

	out := Decide(s, keyword.ReviewOkay)
	if out.Kind != Verified {
		t.Fatalf("Kind = %v, want Verified", out.Kind)
	}
	if !out.Terminal() {
		t.Error("Verified must be terminal")
	}
	if !strings.Contains(strings.ToLower(out.Reason), "verified") {
		t.Errorf("reason %q must mention verified", out.Reason)
	}
}

func TestDecide_Exhausted(t *testing.T) {
	s := state.New(3, "task")
	s.Iteration = 3

	out := Decide(s, keyword.None)
	if out.Kind != Exhausted {
		t.Fatalf("Kind = %v, want Exhausted", out.Kind)
	}
	if !out.Terminal() {
		t.Error("Exhausted must be terminal")
	}
	if !strings.Contains(strings.ToLower(out.Reason), "exhausted") {
		t.Errorf("reason %q must mention exhausted", out.Reason)
	}
}

func TestDecide_ExhaustionBeatsContinuationSentinels(t *testing.T) {
	// Sentinels that would need another turn lose to an empty budget.
	s := state.New(1, "task")

	for _, kw := range []keyword.Keyword{keyword.TaskComplete, keyword.ReviewIncomplete} {
		out := Decide(s, kw)
		if out.Kind != Exhausted {
			t.Errorf("Decide(total=1, %s).Kind = %v, want Exhausted", kw, out.Kind)
		}
	}
}

func TestDecide_VerifiedOnFinalTurn(t *testing.T) {
	// REVIEW_OKAY needs no further turn, so it ends the loop as verified
	// even when the budget is spent.
	s := state.New(3, "task")
	s.Iteration = 3

	out := Decide(s, keyword.ReviewOkay)
	if out.Kind != Verified {
		t.Errorf("Kind = %v, want Verified", out.Kind)
	}
}

func TestDecide_SingleIterationBudget(t *testing.T) {
	s := state.New(1, "one shot")
	out := Decide(s, keyword.None)
	if out.Kind != Exhausted {
		t.Errorf("total=1 should exhaust on the first stop, got %v", out.Kind)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
