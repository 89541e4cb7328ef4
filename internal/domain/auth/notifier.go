package auth

import "sync"

// EventType identifies a session-change push event from the session layer.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventTokenRefreshed EventType = "token_refreshed"
	EventSignedOut      EventType = "signed_out"
)

// Event is delivered to subscribers when the session layer observes a change.
type Event struct {
	Type      EventType
	SessionID string
	UserID    string
}

// Notifier fans session-change events out to subscribers. Publish never
// blocks: a subscriber that has not drained its previous event keeps only the
// newest one (latest-value semantics), which is all the state manager needs.
type Notifier struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewNotifier constructs an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// function. Cancel is idempotent and closes the channel.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)

	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ch)
			n.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to all current subscribers without blocking.
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- ev:
		default:
			// Replace the stale undelivered event with the newest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
