package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/BinitGoswami/my-placement/internal/clock"
)

func newTestQueue() (*Queue, *clock.Fake) {
	c := clock.NewFake(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	return New(WithClock(c), WithDuration(3*time.Second)), c
}

// eventually polls cond until it holds or the test times out.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("%s: condition not met within 2s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func live(q *Queue) bool {
	_, ok := q.Current()
	return ok
}

func TestQueue_ShowAndAutoClear(t *testing.T) {
	q, c := newTestQueue()

	q.Success("Saved")
	n, ok := q.Current()
	if !ok {
		t.Fatal("Current() ok = false after Success")
	}
	if n.Kind != KindSuccess || n.Message != "Saved" {
		t.Errorf("Current() = %+v, want success 'Saved'", n)
	}

	c.Advance(2999 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if !live(q) {
		t.Fatal("notification cleared before its duration elapsed")
	}
	c.Advance(time.Millisecond)
	eventually(t, "auto-clear", func() bool { return !live(q) })
}

func TestQueue_ReplaceResetsTimer(t *testing.T) {
	q, c := newTestQueue()

	q.Info("first")
	c.Advance(2 * time.Second)
	q.Error("second")

	// The first notification's deadline passes; the replacement must survive.
	c.Advance(1500 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	n, ok := q.Current()
	if !ok {
		t.Fatal("replacement cleared by the replaced notification's timer")
	}
	if n.Message != "second" || n.Kind != KindError {
		t.Errorf("Current() = %+v, want error 'second'", n)
	}

	c.Advance(1500 * time.Millisecond)
	eventually(t, "replacement auto-clear", func() bool { return !live(q) })
}

func TestQueue_Dismiss(t *testing.T) {
	q, c := newTestQueue()
	var mu sync.Mutex
	clears := 0
	q.Subscribe(func(n *Notification) {
		if n == nil {
			mu.Lock()
			clears++
			mu.Unlock()
		}
	})

	q.Info("hello")
	q.Dismiss()
	if live(q) {
		t.Fatal("Current() ok = true after Dismiss")
	}
	q.mu.Lock()
	timer := q.timer
	q.mu.Unlock()
	if timer != nil {
		t.Error("auto-clear timer still armed after Dismiss")
	}

	// The dismissed notification's timer must not clear again.
	c.Advance(5 * time.Second)
	time.Sleep(10 * time.Millisecond)
	q.Dismiss() // no-op on empty channel

	mu.Lock()
	defer mu.Unlock()
	if clears != 1 {
		t.Errorf("clear deliveries = %d, want 1", clears)
	}
}

func TestQueue_Subscribe(t *testing.T) {
	q, c := newTestQueue()
	var mu sync.Mutex
	var seen []string
	unsub := q.Subscribe(func(n *Notification) {
		mu.Lock()
		defer mu.Unlock()
		if n == nil {
			seen = append(seen, "<clear>")
			return
		}
		seen = append(seen, n.Kind.String()+":"+n.Message)
	})
	snapshot := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}

	q.Success("a")
	q.Error("b")
	c.Advance(3 * time.Second)
	eventually(t, "clear delivered", func() bool { return len(snapshot()) == 3 })
	unsub()
	q.Info("c")

	got := snapshot()
	want := []string{"success:a", "error:b", "<clear>"}
	if len(got) != len(want) {
		t.Fatalf("seen = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("seen[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestQueue_ConcurrentShowDeliversInStateOrder(t *testing.T) {
	q, _ := newTestQueue()
	var mu sync.Mutex
	var last *Notification
	q.Subscribe(func(n *Notification) {
		// Widen the window between a state change and its delivery.
		time.Sleep(time.Millisecond)
		mu.Lock()
		last = n
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			q.Info(fmt.Sprintf("msg %d", i))
		}()
	}
	wg.Wait()

	cur, ok := q.Current()
	if !ok {
		t.Fatal("no live notification")
	}
	mu.Lock()
	defer mu.Unlock()
	if last == nil || last.ID != cur.ID {
		t.Errorf("last delivered %+v, live %+v; subscribers saw a stale notification last", last, cur)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInfo, "info"},
		{KindSuccess, "success"},
		{KindError, "error"},
		{Kind(9), "kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
