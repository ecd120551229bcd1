package cart

import "sync"

// Notices is a deduplicated ordered list of user-facing warning messages.
// Messages accumulate until a page that displays them is rendered, at which
// point Drain returns and clears them in one step, so each message is shown
// exactly once.
type Notices struct {
	mu       sync.Mutex
	messages []string
}

func NewNotices() *Notices {
	return &Notices{}
}

// Add records a message unless an identical one is already pending.
func (n *Notices) Add(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, existing := range n.messages {
		if existing == msg {
			return
		}
	}
	n.messages = append(n.messages, msg)
}

// Drain returns the pending messages and atomically clears the list. The
// result is never nil so it renders as [] rather than null.
func (n *Notices) Drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	drained := n.messages
	n.messages = nil
	if drained == nil {
		drained = []string{}
	}
	return drained
}
