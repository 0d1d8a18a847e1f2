package tui

import (
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BinitGoswami/my-placement/internal/confirm"
	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/notify"
)

// RedirectMsg asks the router to open a screen. The target is still gated.
type RedirectMsg struct {
	Screen string
	Params url.Values
}

// sessionMsg reports a session change; sess is nil after a clear.
type sessionMsg struct{ sess *model.Session }

// noticeMsg carries the notification currently shown, or nil once it expires.
type noticeMsg struct{ n *notify.Notification }

// tableMsg signals that the open resource list changed.
type tableMsg struct{}

// promptMsg opens or (with nil) closes the confirmation prompt.
type promptMsg struct{ p *confirm.Prompt }

type loginDoneMsg struct {
	sess *model.Session
	err  error
}

type logoutDoneMsg struct{ err error }

func redirectCmd(screen string) tea.Cmd {
	return func() tea.Msg { return RedirectMsg{Screen: screen} }
}
