package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BinitGoswami/my-placement/internal/client"
	"github.com/BinitGoswami/my-placement/internal/model"
)

type dashboard struct {
	m      *Model
	items  []model.Resource
	cursor int
	busy   bool
}

func newDashboard(m *Model, sess *model.Session) *dashboard {
	d := &dashboard{m: m}
	if sess != nil {
		d.items = model.ForRole(sess.Role)
	}
	return d
}

func (d *dashboard) init() tea.Cmd { return nil }

func (d *dashboard) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case logoutDoneMsg:
		d.busy = false
		if msg.err != nil {
			d.m.opts.Notify.Error(client.UserMessage(msg.err, "Logout failed."))
		}
	case tea.KeyMsg:
		if d.busy {
			return nil
		}
		switch msg.String() {
		case "up", "k":
			if d.cursor > 0 {
				d.cursor--
			}
		case "down", "j":
			if d.cursor < len(d.items)-1 {
				d.cursor++
			}
		case "enter":
			if d.cursor < len(d.items) {
				return redirectCmd(d.items[d.cursor].Screen())
			}
		case "o":
			d.busy = true
			cl := d.m.opts.Client
			return func() tea.Msg {
				return logoutDoneMsg{err: cl.Logout(context.Background())}
			}
		case "q":
			d.m.Close()
			return tea.Quit
		}
	}
	return nil
}

func (d *dashboard) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("\n\n")
	if len(d.items) == 0 {
		b.WriteString(mutedStyle.Render("Nothing to manage here yet."))
		b.WriteString("\n")
	}
	for i, res := range d.items {
		line := fmt.Sprintf("  %s", res.Title)
		if i == d.cursor {
			line = selectStyle.Render("> " + res.Title)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if d.busy {
		b.WriteString(mutedStyle.Render("Signing out..."))
	} else {
		b.WriteString(mutedStyle.Render("↑/↓ select • enter open • o sign out • q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (d *dashboard) close() {}
