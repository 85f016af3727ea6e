// Package hook speaks the Claude Code hook protocol: one event JSON on
// stdin, at most one decision JSON on stdout.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
)

// EventStop is the hook_event_name value delivered when the agent stops
// talking. All other event kinds are ignored by the loop controller.
const EventStop = "Stop"

// StopEvent is the hook event payload. Unknown fields are ignored and
// missing fields decode to their zero values; hosts add fields over time.
type StopEvent struct {
	HookEventName        string `json:"hook_event_name"`
	LastAssistantMessage string `json:"last_assistant_message"`
	TranscriptPath       string `json:"transcript_path"`
	SessionID            string `json:"session_id"`
	CWD                  string `json:"cwd"`
}

// ReadEvent decodes a single event from r.
func ReadEvent(r io.Reader) (StopEvent, error) {
	var ev StopEvent
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return StopEvent{}, fmt.Errorf("hook: decode event: %w", err)
	}
	return ev, nil
}

// Decision tells the host what to do with the stop. "block" forces the
// conversation to continue; Reason is re-shown to the agent as its next
// prompt (or a short end-of-loop message).
type Decision struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// Block builds a block decision carrying the given reason prompt.
func Block(reason string) *Decision {
	return &Decision{Decision: "block", Reason: reason}
}

// Write encodes d to w as a single JSON object followed by a newline.
func (d *Decision) Write(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("hook: encode decision: %w", err)
	}
	return nil
}
