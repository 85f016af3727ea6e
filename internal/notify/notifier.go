// Package notify sends fire-and-forget HTTP notifications when a loop
// ends. The primary use case is ntfy.sh, but any HTTP webhook works.
package notify

import (
	"net/http"
	"strings"
	"time"
)

// Notifier posts plain-text HTTP notifications. A nil Notifier or an
// empty URL disables posting.
type Notifier struct {
	url    string
	client *http.Client
}

// New creates a Notifier posting to notifURL, or nil when notifURL is
// empty.
func New(notifURL string) *Notifier {
	if notifURL == "" {
		return nil
	}
	return &Notifier{
		url: notifURL,
		// Hook invocations exit right after the decision is written, so
		// the post is synchronous with a short timeout rather than a
		// goroutine that would be cut off.
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

// LoopEnded posts the message. Errors are silently discarded so
// notification failures never break a hook invocation.
func (n *Notifier) LoopEnded(message string) {
	if n == nil || n.url == "" {
		return
	}
	req, err := http.NewRequest(http.MethodPost, n.url, strings.NewReader(message))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Title", "looper")
	resp, err := n.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
