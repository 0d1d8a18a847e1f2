// Package confirm stages destructive actions until the user explicitly
// confirms them.
package confirm

import (
	"context"
	"errors"
	"sync"
)

// ErrNothingPending is returned by Confirm when no action is staged.
var ErrNothingPending = errors.New("no action awaiting confirmation")

// Effect is the staged work. It runs at most once.
type Effect func(ctx context.Context) error

// Prompt describes the staged action to whoever renders the confirmation.
// A nil *Prompt means the prompt is closed.
type Prompt struct {
	Description string
}

type pending struct {
	description string
	effect      Effect
}

// Gate holds at most one staged action. Staging a new action discards the
// previous one unexecuted.
type Gate struct {
	mu      sync.Mutex
	pending *pending

	nextSub int
	subs    map[int]func(*Prompt)
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{subs: make(map[int]func(*Prompt))}
}

// Stage stores effect and opens the prompt, replacing anything already staged.
func (g *Gate) Stage(description string, effect Effect) {
	g.mu.Lock()
	g.pending = &pending{description: description, effect: effect}
	subs := g.snapshotSubs()
	g.mu.Unlock()

	p := &Prompt{Description: description}
	for _, fn := range subs {
		fn(p)
	}
}

// Pending returns the description of the staged action, if any.
func (g *Gate) Pending() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return "", false
	}
	return g.pending.description, true
}

// Confirm clears the staged action and runs it.
func (g *Gate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	p := g.pending
	g.pending = nil
	subs := g.snapshotSubs()
	g.mu.Unlock()

	if p == nil {
		return ErrNothingPending
	}
	for _, fn := range subs {
		fn(nil)
	}
	return p.effect(ctx)
}

// Cancel discards the staged action without running it.
func (g *Gate) Cancel() {
	g.mu.Lock()
	had := g.pending != nil
	g.pending = nil
	subs := g.snapshotSubs()
	g.mu.Unlock()

	if !had {
		return
	}
	for _, fn := range subs {
		fn(nil)
	}
}

// Subscribe registers fn to observe the prompt opening (non-nil) and
// closing (nil). The returned func unsubscribes.
func (g *Gate) Subscribe(fn func(*Prompt)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

func (g *Gate) snapshotSubs() []func(*Prompt) {
	out := make([]func(*Prompt), 0, len(g.subs))
	for _, fn := range g.subs {
		out = append(out, fn)
	}
	return out
}
