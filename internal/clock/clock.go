// Package clock is the time source for debounce and auto-dismiss timers.
// Production code uses the real clock; tests advance a fake one.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock provides the current time and delayed calls.
type Clock = clockwork.Clock

// Timer is a pending call scheduled with AfterFunc.
type Timer = clockwork.Timer

// Fake is a manually advanced Clock. Calls scheduled with AfterFunc run on
// their own goroutine once Advance moves past their deadline.
type Fake = clockwork.FakeClock

// Real returns a Clock backed by the time package.
func Real() Clock { return clockwork.NewRealClock() }

// NewFake returns a Fake clock starting at t.
func NewFake(t time.Time) *Fake { return clockwork.NewFakeClockAt(t) }
