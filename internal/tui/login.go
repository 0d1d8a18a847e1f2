package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BinitGoswami/my-placement/internal/client"
)

const (
	fieldEmail = iota
	fieldPassword
)

type loginScreen struct {
	m       *Model
	inputs  []textinput.Model
	focus   int
	spin    spinner.Model
	expired bool
	busy    bool
	err     string
}

func newLoginScreen(m *Model, expired bool) *loginScreen {
	email := textinput.New()
	email.Prompt = "Email     "
	email.Placeholder = "you@college.edu"
	email.CharLimit = 254

	password := textinput.New()
	password.Prompt = "Password  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return &loginScreen{
		m:       m,
		inputs:  []textinput.Model{email, password},
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		expired: expired,
	}
}

func (s *loginScreen) init() tea.Cmd {
	return s.setFocus(fieldEmail)
}

func (s *loginScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginDoneMsg:
		s.busy = false
		if msg.err != nil {
			s.err = client.UserMessage(msg.err, "Login failed. Please try again.")
			s.inputs[fieldPassword].SetValue("")
			return s.setFocus(fieldPassword)
		}
		return redirectCmd(msg.sess.Role.HomeScreen())
	case spinner.TickMsg:
		if !s.busy {
			return nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return cmd
	case tea.KeyMsg:
		if s.busy {
			return nil
		}
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			return s.setFocus(1 - s.focus)
		case "enter":
			if s.focus == fieldEmail {
				return s.setFocus(fieldPassword)
			}
			return s.submit()
		}
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return cmd
}

func (s *loginScreen) setFocus(i int) tea.Cmd {
	s.focus = i
	var cmd tea.Cmd
	for j := range s.inputs {
		if j == i {
			cmd = s.inputs[j].Focus()
			continue
		}
		s.inputs[j].Blur()
	}
	return cmd
}

func (s *loginScreen) submit() tea.Cmd {
	req := &client.LoginRequest{
		Email:    strings.TrimSpace(s.inputs[fieldEmail].Value()),
		Password: s.inputs[fieldPassword].Value(),
	}
	s.busy = true
	s.err = ""
	cl := s.m.opts.Client
	login := func() tea.Msg {
		sess, err := cl.Login(context.Background(), req)
		return loginDoneMsg{sess: sess, err: err}
	}
	return tea.Batch(login, s.spin.Tick)
}

func (s *loginScreen) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in"))
	b.WriteString("\n\n")
	if s.expired {
		b.WriteString(bannerStyle.Render("Your session has expired. Please sign in again."))
		b.WriteString("\n\n")
	}
	for _, in := range s.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case s.busy:
		b.WriteString(s.spin.View() + " Signing in...")
	case s.err != "":
		b.WriteString(errorStyle.Render(s.err))
	default:
		b.WriteString(mutedStyle.Render("tab switch field • enter sign in • ctrl+c quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (s *loginScreen) close() {}
