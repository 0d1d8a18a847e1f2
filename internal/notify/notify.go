// Package notify holds the console's single notification channel.
//
// Exactly zero or one notification is live at a time. Showing a new one
// replaces the current one; each notification clears itself after a fixed
// display duration unless it was replaced first.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/BinitGoswami/my-placement/internal/clock"
	"github.com/BinitGoswami/my-placement/internal/idgen"
)

// Kind selects how a notification is presented. It never changes behavior.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// DefaultDuration is how long a notification stays up when none is configured.
const DefaultDuration = 3 * time.Second

// Notification is one user-facing message.
type Notification struct {
	ID        string
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// Notifier is the write side of the queue, as used by controllers.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Queue is the single notification channel.
type Queue struct {
	mu       sync.Mutex
	clock    clock.Clock
	duration time.Duration
	current  *Notification
	timer    clock.Timer

	nextSub int
	subs    map[int]func(*Notification)

	// emitMu is held from a state change through its delivery, so
	// subscribers see changes in the order they were made.
	emitMu sync.Mutex
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// WithDuration sets the display duration.
func WithDuration(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.duration = d
		}
	}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		clock:    clock.Real(),
		duration: DefaultDuration,
		subs:     make(map[int]func(*Notification)),
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Show replaces the live notification with a new one and arms its auto-clear.
func (q *Queue) Show(kind Kind, msg string) Notification {
	n := Notification{
		ID:        idgen.NotificationID(),
		Kind:      kind,
		Message:   msg,
		CreatedAt: q.clock.Now(),
	}

	q.emitMu.Lock()
	defer q.emitMu.Unlock()

	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
	}
	q.current = &n
	id := n.ID
	q.timer = q.clock.AfterFunc(q.duration, func() { q.expire(id) })
	subs := q.snapshotSubs()
	q.mu.Unlock()

	cp := n
	for _, fn := range subs {
		fn(&cp)
	}
	return n
}

// Success shows a success notification.
func (q *Queue) Success(msg string) { q.Show(KindSuccess, msg) }

// Error shows an error notification.
func (q *Queue) Error(msg string) { q.Show(KindError, msg) }

// Info shows an informational notification.
func (q *Queue) Info(msg string) { q.Show(KindInfo, msg) }

// Current returns the live notification, if any.
func (q *Queue) Current() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Notification{}, false
	}
	return *q.current, true
}

// Dismiss clears the live notification early.
func (q *Queue) Dismiss() {
	q.emitMu.Lock()
	defer q.emitMu.Unlock()

	q.mu.Lock()
	if q.current == nil {
		q.mu.Unlock()
		return
	}
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.current = nil
	subs := q.snapshotSubs()
	q.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
}

// Subscribe registers fn to be called with every new notification and with
// nil when the channel clears. Calls are serialized; fn must not call back
// into Show, its shorthands, or Dismiss. The returned func unsubscribes.
func (q *Queue) Subscribe(fn func(*Notification)) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.subs, id)
	}
}

// expire clears the notification with the given id if it is still live.
func (q *Queue) expire(id string) {
	q.emitMu.Lock()
	defer q.emitMu.Unlock()

	q.mu.Lock()
	if q.current == nil || q.current.ID != id {
		q.mu.Unlock()
		return
	}
	q.current = nil
	q.timer = nil
	subs := q.snapshotSubs()
	q.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
}

// snapshotSubs copies the subscriber list. Caller holds q.mu.
func (q *Queue) snapshotSubs() []func(*Notification) {
	out := make([]func(*Notification), 0, len(q.subs))
	for _, fn := range q.subs {
		out = append(out, fn)
	}
	return out
}
