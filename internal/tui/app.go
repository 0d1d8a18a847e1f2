// Package tui is the interactive console. It is a bubbletea program whose
// router evaluates every screen through guard before the screen is built,
// so a screen the session may not see never renders.
package tui

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BinitGoswami/my-placement/internal/client"
	"github.com/BinitGoswami/my-placement/internal/events"
	"github.com/BinitGoswami/my-placement/internal/guard"
	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/notify"
	"github.com/BinitGoswami/my-placement/internal/session"
)

// maxRedirects bounds a chain of guard redirects. Guard only ever sends a
// user to login or to their dashboard, both of which admit them.
const maxRedirects = 3

// Sessions is the part of the session store the program reads and watches.
type Sessions interface {
	Get() *model.Session
	Subscribe(fn session.Listener) func()
}

// Options wires the program to the rest of the console.
type Options struct {
	Sessions Sessions
	Client   client.ConsoleClient
	Notify   *notify.Queue

	// Bridge must be the Navigator of Client, so that expiry redirects
	// reach the router.
	Bridge *Bridge

	PageSize             model.PageSize
	Debounce             time.Duration
	RefetchAfterMutation bool

	// Publisher and Subscriber enable live refresh between consoles.
	// Both may be nil.
	Publisher  events.Publisher
	Subscriber events.Subscriber
	Origin     string

	Logger *slog.Logger

	// Start is the first screen requested; empty means login.
	Start string
}

type screen interface {
	init() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view() string
	close()
}

// Model is the root bubbletea model.
type Model struct {
	opts Options
	gate *guard.Gate

	name   string
	cur    screen
	notice *notify.Notification

	width, height int
	unsubs        []func()
}

// New builds the root model and subscribes it to session and notification
// changes.
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notify == nil {
		opts.Notify = notify.New()
	}
	if opts.Bridge == nil {
		opts.Bridge = NewBridge(opts.Logger)
	}
	m := &Model{
		opts: opts,
		gate: guard.NewGate(opts.Sessions),
	}
	bridge := opts.Bridge
	m.unsubs = append(m.unsubs,
		opts.Sessions.Subscribe(func(s *model.Session) { bridge.Send(sessionMsg{sess: s}) }),
		opts.Notify.Subscribe(func(n *notify.Notification) { bridge.Send(noticeMsg{n: n}) }),
	)
	return m
}

// Init opens the start screen.
func (m *Model) Init() tea.Cmd {
	start := m.opts.Start
	if start == "" {
		start = model.LoginScreen
	}
	return m.navigate(start, nil)
}

// Update routes router-level messages and hands the rest to the open screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Close()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case RedirectMsg:
		return m, m.navigate(msg.Screen, msg.Params)
	case sessionMsg:
		return m, m.regate()
	case noticeMsg:
		m.notice = msg.n
		return m, nil
	}
	if m.cur == nil {
		return m, nil
	}
	return m, m.cur.update(msg)
}

// View renders the header, the open screen and the notification line.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	if m.cur != nil {
		b.WriteString(m.cur.view())
	}
	if n := renderNotice(m.notice); n != "" {
		b.WriteString("\n")
		b.WriteString(n)
	}
	b.WriteString("\n")
	return b.String()
}

// Screen returns the name of the open screen.
func (m *Model) Screen() string { return m.name }

// Close releases the open screen and all subscriptions.
func (m *Model) Close() {
	if m.cur != nil {
		m.cur.close()
		m.cur = nil
	}
	for _, fn := range m.unsubs {
		fn()
	}
	m.unsubs = nil
}

func (m *Model) header() string {
	title := titleStyle.Render("Placement Console")
	sess := m.opts.Sessions.Get()
	if sess == nil {
		return headerStyle.Render(title)
	}
	who := sess.Name
	if who == "" {
		who = sess.Identity.String()
	}
	line := title + mutedStyle.Render("  "+who+" ("+sess.Role.String()+")")
	if sess.Flags.Frozen {
		line += "  " + warnStyle.Render("account frozen")
	}
	return headerStyle.Render(line)
}

func (m *Model) home() string {
	if sess := m.opts.Sessions.Get(); sess != nil {
		return sess.Role.HomeScreen()
	}
	return model.LoginScreen
}

// navigate gates name and, once a screen admits the session, replaces the
// open screen with it. Navigating to the open screen without params keeps
// it as is.
func (m *Model) navigate(name string, params url.Values) tea.Cmd {
	for hops := 0; ; hops++ {
		scr, ok := guard.Resolve(name)
		if !ok {
			m.opts.Logger.Warn("unknown screen", "screen", name)
			name, params = m.home(), nil
			continue
		}
		d := m.gate.Evaluate(scr)
		if d.Allow {
			break
		}
		if hops >= maxRedirects {
			m.opts.Logger.Error("redirect loop", "screen", name, "reason", d.Reason)
			return nil
		}
		m.opts.Logger.Debug("screen redirected", "from", name, "to", d.Redirect, "reason", d.Reason)
		name, params = d.Redirect, nil
	}

	if m.cur != nil && name == m.name && len(params) == 0 {
		return nil
	}
	if m.cur != nil {
		m.cur.close()
		m.cur = nil
	}
	m.name = name

	sess := m.opts.Sessions.Get()
	switch {
	case name == model.LoginScreen:
		m.cur = newLoginScreen(m, params.Get(client.ParamSessionExpired) == "true")
	case strings.HasSuffix(name, "/dashboard"):
		m.cur = newDashboard(m, sess)
	default:
		_, resName, _ := strings.Cut(name, "/")
		res, _ := model.Lookup(resName)
		rs, err := newResourceScreen(m, res, sess)
		if err != nil {
			m.opts.Logger.Error("opening resource screen", "resource", res.Name, "error", err)
			m.opts.Notify.Error("Could not open " + res.Title + ".")
			m.name = ""
			return m.navigate(m.home(), nil)
		}
		m.cur = rs
	}
	m.opts.Logger.Debug("screen opened", "screen", name)
	if m.width > 0 {
		m.cur.update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	return m.cur.init()
}

// regate re-evaluates the open screen after a session change and leaves it
// if the new session may no longer see it.
func (m *Model) regate() tea.Cmd {
	scr, ok := guard.Resolve(m.name)
	if !ok {
		return nil
	}
	if d := m.gate.Evaluate(scr); !d.Allow {
		return m.navigate(d.Redirect, nil)
	}
	return nil
}
