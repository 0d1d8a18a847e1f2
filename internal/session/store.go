// Package session holds the console's signed-in identity.
//
// Store is the single source of truth for the current session. Every read
// of "who is signed in" goes through Get, and every change goes through Set
// or Clear, which notify subscribers synchronously. Nothing in this package
// talks to the network.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BinitGoswami/my-placement/internal/model"
)

// Persister saves the session between console runs.
type Persister interface {
	// Load returns the persisted session, or nil when none is stored.
	Load() (*model.Session, error)
	Save(s *model.Session) error
	Remove() error
}

// Listener observes session changes. It receives nil when the session is cleared.
type Listener func(*model.Session)

// Store is the process-wide session holder.
type Store struct {
	mu        sync.Mutex
	current   *model.Session
	persister Persister
	logger    *slog.Logger
	now       func() time.Time

	nextSub int
	subs    map[int]Listener

	// persistMu orders persister calls. Each write stores the session
	// current when it runs.
	persistMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithPersister makes the store load and save the session through p.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithNow overrides the time source used to check token expiry.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. Call Open to restore a persisted session.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: slog.Default(),
		now:    time.Now,
		subs:   make(map[int]Listener),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open restores the persisted session, if any. A persisted session that is
// malformed or whose bearer token has already expired is discarded.
func (s *Store) Open() error {
	if s.persister == nil {
		return nil
	}
	loaded, err := s.persister.Load()
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if loaded == nil {
		return nil
	}
	if !s.usable(loaded) {
		s.logger.Info("session: discarding stale persisted session", "identity", loaded.Identity)
		if err := s.persister.Remove(); err != nil {
			return fmt.Errorf("removing stale session: %w", err)
		}
		return nil
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the current session, or nil when signed out.
func (s *Store) Get() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Set replaces the current session and notifies subscribers.
func (s *Store) Set(sess model.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	cp := sess

	s.mu.Lock()
	s.current = &cp
	subs := s.snapshotSubs()
	s.mu.Unlock()

	s.persist()
	s.notify(subs, &cp)
	return nil
}

// Clear signs the console out and notifies subscribers. It reports whether a
// session was actually removed; concurrent callers racing to clear the same
// session see true exactly once.
func (s *Store) Clear() bool {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return false
	}
	s.current = nil
	subs := s.snapshotSubs()
	s.mu.Unlock()

	s.persist()
	s.notify(subs, nil)
	return true
}

// Reload re-reads the persisted session without writing it back. It is used
// when another console process changed the stored session. Subscribers are
// notified only if the session actually changed.
func (s *Store) Reload() error {
	if s.persister == nil {
		return nil
	}
	s.persistMu.Lock()
	loaded, err := s.persister.Load()
	if err != nil {
		s.persistMu.Unlock()
		return fmt.Errorf("reloading session: %w", err)
	}
	if loaded != nil && !s.usable(loaded) {
		loaded = nil
	}

	s.mu.Lock()
	if s.current.Equal(loaded) {
		s.mu.Unlock()
		s.persistMu.Unlock()
		return nil
	}
	s.current = loaded
	subs := s.snapshotSubs()
	s.mu.Unlock()
	s.persistMu.Unlock()

	var out *model.Session
	if loaded != nil {
		cp := *loaded
		out = &cp
	}
	s.notify(subs, out)
	return nil
}

// Subscribe registers fn for session changes. The returned func unsubscribes.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// persist writes the current session, or removes the stored one when
// signed out.
func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	var cur *model.Session
	if s.current != nil {
		cp := *s.current
		cur = &cp
	}
	s.mu.Unlock()

	if cur == nil {
		if err := s.persister.Remove(); err != nil {
			s.logger.Warn("session: failed to remove persisted session", "error", err)
		}
		return
	}
	if err := s.persister.Save(cur); err != nil {
		s.logger.Warn("session: failed to persist session", "identity", cur.Identity, "error", err)
	}
}

func (s *Store) usable(sess *model.Session) bool {
	if sess.Validate() != nil {
		return false
	}
	return !TokenExpired(sess.Credentials.Token, s.now())
}

func (s *Store) snapshotSubs() []Listener {
	out := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

// notify runs outside s.mu so listeners may call back into the store.
func (s *Store) notify(subs []Listener, sess *model.Session) {
	for _, fn := range subs {
		if sess == nil {
			fn(nil)
			continue
		}
		cp := *sess
		fn(&cp)
	}
}
