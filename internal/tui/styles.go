package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/BinitGoswami/my-placement/internal/notify"
)

var (
	colorAccent  = lipgloss.Color("74")
	colorMuted   = lipgloss.Color("245")
	colorSuccess = lipgloss.Color("71")
	colorError   = lipgloss.Color("167")
	colorWarn    = lipgloss.Color("179")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	selectStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(colorWarn).Border(lipgloss.RoundedBorder()).BorderForeground(colorWarn).Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(colorMuted)
	bannerStyle  = lipgloss.NewStyle().Foreground(colorWarn).Padding(0, 1)
	noticeStyles = map[notify.Kind]lipgloss.Style{
		notify.KindInfo:    lipgloss.NewStyle().Foreground(colorAccent),
		notify.KindSuccess: lipgloss.NewStyle().Foreground(colorSuccess),
		notify.KindError:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
	}
)

func renderNotice(n *notify.Notification) string {
	if n == nil {
		return ""
	}
	icon := "ℹ"
	switch n.Kind {
	case notify.KindSuccess:
		icon = "✓"
	case notify.KindError:
		icon = "✗"
	}
	return noticeStyles[n.Kind].Render(icon + " " + n.Message)
}
