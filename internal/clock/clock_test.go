package clock

import (
	"context"
	"testing"
	"time"
)

func TestFake_AfterFuncFiresOnAdvance(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := make(chan string, 2)
	c.AfterFunc(10*time.Millisecond, func() { fired <- "a" })
	c.AfterFunc(time.Second, func() { fired <- "late" })

	c.Advance(50 * time.Millisecond)
	select {
	case got := <-fired:
		if got != "a" {
			t.Fatalf("fired %q, want a", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("due timer did not fire")
	}
	select {
	case got := <-fired:
		t.Errorf("timer %q fired early", got)
	default:
	}
	if want := time.Unix(0, 0).Add(50 * time.Millisecond); !c.Now().Equal(want) {
		t.Errorf("now = %v, want %v", c.Now(), want)
	}
}

func TestFake_StopPreventsFiring(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := make(chan struct{}, 1)
	tm := c.AfterFunc(10*time.Millisecond, func() { fired <- struct{}{} })

	if !tm.Stop() {
		t.Fatal("Stop() = false, want true for a pending timer")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.BlockUntilContext(ctx, 0); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}
	c.Advance(time.Second)
	select {
	case <-fired:
		t.Error("stopped timer fired")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	if got := Real().Now(); got.Before(before) {
		t.Errorf("Real().Now() = %v, before %v", got, before)
	}
}
