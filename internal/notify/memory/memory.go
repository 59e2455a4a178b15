// Package memory contains an in-memory Notifier for tests and dry runs.
package memory

import (
	"context"
	"sync"
)

// Notifier records delivered messages for inspection.
type Notifier struct {
	mu       sync.RWMutex
	messages []string
	err      error
}

// New returns a memory Notifier.
func New() *Notifier {
	return &Notifier{}
}

// FailWith makes every subsequent Notify call return err. The message is still recorded.
func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

// Notify records the message.
func (n *Notifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.err
}

// Messages returns the recorded messages.
func (n *Notifier) Messages() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.messages))
	copy(out, n.messages)
	return out
}
