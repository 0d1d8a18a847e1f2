package tui

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// bridgeBuffer bounds how many messages may wait for the program loop.
const bridgeBuffer = 256

// Bridge delivers events raised outside the program loop (controller
// changes, notifications, session changes, redirects) to the program as
// messages. Send never blocks, so it is safe to call from inside Update.
type Bridge struct {
	logger *slog.Logger
	queue  chan tea.Msg
	done   chan struct{}

	mu       sync.Mutex
	attached bool
	once     sync.Once
}

// NewBridge returns a bridge that buffers messages until Attach.
func NewBridge(logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		logger: logger,
		queue:  make(chan tea.Msg, bridgeBuffer),
		done:   make(chan struct{}),
	}
}

// Attach starts forwarding messages to p in the order they were sent.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached {
		return
	}
	b.attached = true
	go func() {
		for {
			select {
			case <-b.done:
				return
			case msg := <-b.queue:
				p.Send(msg)
			}
		}
	}()
}

// Send queues msg for the program.
func (b *Bridge) Send(msg tea.Msg) {
	select {
	case <-b.done:
	case b.queue <- msg:
	default:
		b.logger.Warn("dropping ui message, queue full", "type", fmt.Sprintf("%T", msg))
	}
}

// Redirect implements client.Navigator.
func (b *Bridge) Redirect(screen string, params url.Values) {
	b.Send(RedirectMsg{Screen: screen, Params: params})
}

// Close stops forwarding. Messages still queued are dropped.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}
