// Package notify provides the payloadless "todo data changed" broadcast.
// The conversation core publishes when an assistant tool call mutates
// tasks; unrelated views subscribe to re-fetch their data.
package notify

import "sync"

// Notifier is a minimal observer list. The zero value is ready to use.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]func()
	next int
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers fn to run on every Publish. The returned cancel
// function removes the subscription; calling it more than once is safe.
func (n *Notifier) Subscribe(fn func()) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]func())
	}
	id := n.next
	n.next++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Publish invokes every current subscriber. Subscribers run outside the
// lock, so they may subscribe or cancel freely.
func (n *Notifier) Publish() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
