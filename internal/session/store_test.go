package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BinitGoswami/my-placement/internal/model"
)

var testNow = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func adminSession() model.Session {
	return model.Session{
		Identity:        "42",
		Name:            "Asha",
		Role:            model.RoleAdmin,
		AuthenticatedAt: testNow,
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": "admin",
		"exp":  exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

// memPersister is an in-memory Persister that counts writes.
type memPersister struct {
	mu      sync.Mutex
	sess    *model.Session
	saves   int
	removes int
	loadErr error
}

func (m *memPersister) Load() (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.sess == nil {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

func (m *memPersister) Save(s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sess = &cp
	m.saves++
	return nil
}

func (m *memPersister) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	m.removes++
	return nil
}

func TestStore_SetGetClear(t *testing.T) {
	s := NewStore()
	if s.Get() != nil {
		t.Fatal("new store has a session")
	}

	if err := s.Set(adminSession()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got := s.Get()
	if got == nil || got.Identity != "42" || got.Role != model.RoleAdmin {
		t.Fatalf("Get() = %+v, want admin 42", got)
	}

	// Get returns a copy.
	got.Role = model.RoleStudent
	if s.Get().Role != model.RoleAdmin {
		t.Error("mutating Get() result changed the store")
	}

	if !s.Clear() {
		t.Error("Clear() = false, want true")
	}
	if s.Get() != nil {
		t.Error("session still present after Clear")
	}
	if s.Clear() {
		t.Error("second Clear() = true, want false")
	}
}

func TestStore_SetRejectsBrokenInvariant(t *testing.T) {
	tests := []struct {
		name string
		sess model.Session
	}{
		{"no identity", model.Session{Role: model.RoleAdmin}},
		{"no role", model.Session{Identity: "1"}},
		{"unknown role", model.Session{Identity: "1", Role: "janitor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			err := s.Set(tt.sess)
			if !errors.Is(err, model.ErrInvalidSession) {
				t.Errorf("Set() error = %v, want ErrInvalidSession", err)
			}
			if s.Get() != nil {
				t.Error("invalid session was stored")
			}
		})
	}
}

func TestStore_SubscribersNotifiedSynchronously(t *testing.T) {
	s := NewStore()
	var events []string
	unsub := s.Subscribe(func(sess *model.Session) {
		if sess == nil {
			events = append(events, "cleared")
			return
		}
		events = append(events, "set:"+sess.Identity.String())
	})

	_ = s.Set(adminSession())
	if len(events) != 1 {
		t.Fatalf("events after Set = %v, want one event before Set returns", events)
	}
	s.Clear()
	s.Clear() // already empty: no event
	unsub()
	_ = s.Set(adminSession())

	want := []string{"set:42", "cleared"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestStore_ListenerMayReenterStore(t *testing.T) {
	s := NewStore()
	var seen *model.Session
	s.Subscribe(func(sess *model.Session) {
		seen = s.Get()
	})

	done := make(chan struct{})
	go func() {
		_ = s.Set(adminSession())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Set deadlocked when a listener called Get")
	}
	if seen == nil || seen.Identity != "42" {
		t.Errorf("listener saw %+v, want the new session", seen)
	}
}

func TestStore_ConcurrentClearReportsTrueOnce(t *testing.T) {
	s := NewStore()
	_ = s.Set(adminSession())

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Clear() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Errorf("Clear() returned true %d times, want 1", wins.Load())
	}
}

func TestStore_PersistsThroughPersister(t *testing.T) {
	p := &memPersister{}
	s := NewStore(WithPersister(p))

	sess := adminSession()
	sess.Flags.Frozen = true
	_ = s.Set(sess)
	if p.saves != 1 || p.sess == nil || !p.sess.Flags.Frozen {
		t.Fatalf("persister after Set = %+v (saves=%d), want saved frozen session", p.sess, p.saves)
	}

	s2 := NewStore(WithPersister(p), WithNow(func() time.Time { return testNow }))
	if err := s2.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := s2.Get(); got == nil || got.Identity != "42" || !got.Flags.Frozen {
		t.Errorf("restored session = %+v, want frozen admin 42", got)
	}

	s2.Clear()
	if p.removes != 1 || p.sess != nil {
		t.Errorf("persister after Clear: removes=%d sess=%+v", p.removes, p.sess)
	}
}

// gatedPersister blocks its first Save until release is closed.
type gatedPersister struct {
	memPersister
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedPersister) Save(s *model.Session) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.memPersister.Save(s)
}

func TestStore_ClearDuringSlowSaveStaysSignedOut(t *testing.T) {
	p := &gatedPersister{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewStore(WithPersister(p), WithNow(func() time.Time { return testNow }))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.Set(adminSession())
	}()
	<-p.entered

	go func() {
		defer wg.Done()
		s.Clear()
	}()
	deadline := time.Now().Add(2 * time.Second)
	for s.Get() != nil {
		if time.Now().After(deadline) {
			t.Fatal("Clear did not take effect in memory")
		}
		time.Sleep(time.Millisecond)
	}

	close(p.release)
	wg.Wait()

	if s.Get() != nil {
		t.Fatalf("in-memory session = %+v, want nil", s.Get())
	}
	p.mu.Lock()
	stored := p.sess
	p.mu.Unlock()
	if stored != nil {
		t.Fatalf("persisted session = %+v after Clear, want none", stored)
	}

	next := NewStore(WithPersister(p), WithNow(func() time.Time { return testNow }))
	if err := next.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := next.Get(); got != nil {
		t.Errorf("next start restored %+v, want signed out", got)
	}
}

func TestStore_OpenDiscardsExpiredToken(t *testing.T) {
	sess := adminSession()
	sess.Credentials.Token = signedToken(t, testNow.Add(-time.Minute))
	p := &memPersister{sess: &sess}

	s := NewStore(WithPersister(p), WithNow(func() time.Time { return testNow }))
	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Get() != nil {
		t.Error("expired session was restored")
	}
	if p.removes != 1 {
		t.Errorf("removes = %d, want expired session removed from storage", p.removes)
	}
}

func TestStore_OpenKeepsLiveToken(t *testing.T) {
	sess := adminSession()
	sess.Credentials.Token = signedToken(t, testNow.Add(time.Hour))
	p := &memPersister{sess: &sess}

	s := NewStore(WithPersister(p), WithNow(func() time.Time { return testNow }))
	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Get() == nil {
		t.Error("live session was discarded")
	}
}

func TestStore_OpenPropagatesLoadError(t *testing.T) {
	p := &memPersister{loadErr: errors.New("disk on fire")}
	s := NewStore(WithPersister(p))
	if err := s.Open(); err == nil {
		t.Fatal("Open() error = nil, want load error")
	}
}

func TestStore_ReloadNotifiesOnlyOnChange(t *testing.T) {
	p := &memPersister{}
	s := NewStore(WithPersister(p))
	_ = s.Set(adminSession())

	count := 0
	s.Subscribe(func(*model.Session) { count++ })

	// Our own write echoed back: no change.
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if count != 0 {
		t.Errorf("notifications after no-op reload = %d, want 0", count)
	}
	savesBefore := p.saves

	// Another process signed out.
	p.sess = nil
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if count != 1 || s.Get() != nil {
		t.Errorf("after external logout: count=%d session=%+v", count, s.Get())
	}
	if p.saves != savesBefore {
		t.Error("Reload wrote the session back to storage")
	}
}

func TestWatch_ExternalLogoutClearsStore(t *testing.T) {
	dir := t.TempDir()
	fp, err := NewFilePersister(dir)
	if err != nil {
		t.Fatalf("NewFilePersister() error = %v", err)
	}
	s := NewStore(WithPersister(fp))
	_ = s.Set(adminSession())

	cleared := make(chan struct{}, 1)
	s.Subscribe(func(sess *model.Session) {
		if sess == nil {
			select {
			case cleared <- struct{}{}:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchErr := make(chan error, 1)
	go func() { watchErr <- Watch(ctx, s, dir) }()

	// Give the watcher time to register before the other "process" writes.
	time.Sleep(100 * time.Millisecond)
	other, _ := NewFilePersister(dir)
	if err := other.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	select {
	case <-cleared:
	case <-time.After(3 * time.Second):
		t.Fatal("store was not cleared after the session file was removed")
	}
	cancel()
	if err := <-watchErr; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}
