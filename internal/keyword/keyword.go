// Package keyword classifies agent output against the loop control sentinels.
package keyword

import "strings"

// Keyword is a control sentinel the agent may emit in its final message.
type Keyword string

const (
	None             Keyword = ""
	TaskComplete     Keyword = "TASK_COMPLETE"
	ReviewOkay       Keyword = "REVIEW_OKAY"
	ReviewIncomplete Keyword = "REVIEW_INCOMPLETE"
)

// scanOrder fixes the priority when a message contains several sentinels.
var scanOrder = []Keyword{TaskComplete, ReviewOkay, ReviewIncomplete}

// Find scans text for a sentinel and returns the first match in priority
// order, or None. Matching is substring containment: the keyword may
// appear anywhere, surrounded by other commentary.
func Find(text string) Keyword {
	for _, kw := range scanOrder {
		if strings.Contains(text, string(kw)) {
			return kw
		}
	}
	return None
}
