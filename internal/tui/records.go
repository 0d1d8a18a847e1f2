package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BinitGoswami/my-placement/internal/confirm"
	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/table"
)

// pageSizes is the cycle the "s" key steps through.
var pageSizes = []model.PageSize{10, 25, 50, model.Unbounded}

func nextPageSize(cur model.PageSize) model.PageSize {
	for i, s := range pageSizes {
		if s == cur {
			return pageSizes[(i+1)%len(pageSizes)]
		}
	}
	return pageSizes[0]
}

// resourceScreen lists one resource. It owns a controller for as long as
// the screen is open.
type resourceScreen struct {
	m      *Model
	res    model.Resource
	fields []string
	frozen bool

	ctl *table.Controller[model.Record]
	st  table.State[model.Record]

	tbl       btable.Model
	search    textinput.Model
	searching bool
	prompt    *confirm.Prompt

	cancel context.CancelFunc
	unsub  func()
}

func newResourceScreen(m *Model, res model.Resource, sess *model.Session) (*resourceScreen, error) {
	if res.Name == "" {
		return nil, errors.New("unknown resource")
	}
	o := m.opts
	bridge := o.Bridge
	ctl, err := table.ForResource(o.Client, res, table.Config[model.Record]{
		PageSize:             o.PageSize,
		Debounce:             o.Debounce,
		Notifier:             o.Notify,
		Logger:               o.Logger.With("resource", res.Name),
		OnChange:             func(table.State[model.Record]) { bridge.Send(tableMsg{}) },
		RefetchAfterMutation: o.RefetchAfterMutation,
		Publisher:            o.Publisher,
		Origin:               o.Origin,
	})
	if err != nil {
		return nil, err
	}

	fields := res.Columns
	if len(fields) == 0 {
		fields = []string{"id"}
	}

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "type to filter"
	search.CharLimit = 100

	ctx, cancel := context.WithCancel(context.Background())
	s := &resourceScreen{
		m:      m,
		res:    res,
		fields: fields,
		frozen: sess != nil && sess.Flags.Frozen,
		ctl:    ctl,
		st:     ctl.State(),
		tbl: btable.New(
			btable.WithColumns(columnsFor(fields, 80)),
			btable.WithFocused(true),
			btable.WithHeight(12),
		),
		search: search,
		cancel: cancel,
	}
	s.unsub = ctl.Gate().Subscribe(func(p *confirm.Prompt) { bridge.Send(promptMsg{p: p}) })
	if o.Subscriber != nil {
		if err := ctl.Follow(ctx, o.Subscriber); err != nil {
			o.Logger.Warn("live refresh unavailable", "resource", res.Name, "error", err)
		}
	}
	return s, nil
}

func columnsFor(fields []string, width int) []btable.Column {
	w := max((width-4)/len(fields)-2, 6)
	cols := make([]btable.Column, len(fields))
	for i, f := range fields {
		cols[i] = btable.Column{Title: strings.ToUpper(strings.ReplaceAll(f, "_", " ")), Width: w}
	}
	return cols
}

func (s *resourceScreen) init() tea.Cmd {
	s.ctl.Refresh()
	return nil
}

func (s *resourceScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tableMsg:
		s.sync()
	case promptMsg:
		s.prompt = msg.p
	case tea.WindowSizeMsg:
		s.tbl.SetColumns(columnsFor(s.fields, msg.Width))
		s.tbl.SetHeight(max(msg.Height-14, 5))
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

// sync copies the controller state into the table widget.
func (s *resourceScreen) sync() {
	s.st = s.ctl.State()
	rows := make([]btable.Row, 0, len(s.st.Items))
	for _, rec := range s.st.Items {
		row := make(btable.Row, len(s.fields))
		for i, f := range s.fields {
			row[i] = rec.String(f)
		}
		rows = append(rows, row)
	}
	s.tbl.SetRows(rows)
	if c := s.tbl.Cursor(); c >= len(rows) {
		s.tbl.SetCursor(max(len(rows)-1, 0))
	}
}

func (s *resourceScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.prompt != nil {
		switch msg.String() {
		case "y", "Y":
			s.prompt = nil
			if err := s.ctl.Gate().Confirm(context.Background()); err != nil && !errors.Is(err, confirm.ErrNothingPending) {
				s.m.opts.Logger.Warn("confirmed action failed", "error", err)
			}
		case "n", "N", "esc":
			s.prompt = nil
			s.ctl.Gate().Cancel()
		}
		return nil
	}

	if s.searching {
		switch msg.String() {
		case "enter":
			s.searching = false
			s.search.Blur()
			s.ctl.CommitSearch()
			return nil
		case "esc":
			s.searching = false
			s.search.Blur()
			return nil
		}
		before := s.search.Value()
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		if v := s.search.Value(); v != before {
			s.ctl.SetSearch(v)
		}
		return cmd
	}

	switch msg.String() {
	case "/":
		s.searching = true
		return s.search.Focus()
	case "right", "l", "pgdown":
		s.ctl.NextPage()
	case "left", "h", "pgup":
		s.ctl.PrevPage()
	case "s":
		s.ctl.SetPageSize(nextPageSize(s.st.PageSize))
	case "r":
		s.ctl.Refresh()
	case "d", "delete":
		s.requestDelete()
	case "esc", "b":
		return redirectCmd(s.m.home())
	default:
		var cmd tea.Cmd
		s.tbl, cmd = s.tbl.Update(msg)
		return cmd
	}
	return nil
}

func (s *resourceScreen) requestDelete() {
	if s.frozen {
		s.m.opts.Notify.Error("Your account is frozen. Changes are disabled.")
		return
	}
	i := s.tbl.Cursor()
	if i < 0 || i >= len(s.st.Items) {
		return
	}
	s.ctl.RequestDelete(s.st.Items[i])
}

func (s *resourceScreen) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.res.Title))
	b.WriteString("\n")
	if s.searching || s.search.Value() != "" {
		b.WriteString(s.search.View())
	} else {
		b.WriteString(mutedStyle.Render("/ to search"))
	}
	b.WriteString("\n\n")

	switch {
	case s.st.Status == table.StatusError:
		b.WriteString(errorStyle.Render("Could not load records. Press r to retry."))
		b.WriteString("\n")
	case s.st.Status == table.StatusLoaded && len(s.st.Items) == 0:
		b.WriteString(mutedStyle.Render(s.st.EmptyMessage()))
		b.WriteString("\n")
	case s.st.Status == table.StatusIdle:
		b.WriteString(mutedStyle.Render("Loading..."))
		b.WriteString("\n")
	default:
		b.WriteString(s.tbl.View())
		b.WriteString("\n")
	}

	status := s.st.Range()
	if s.st.Paged() {
		status += fmt.Sprintf("  page %d/%d", s.st.Page, s.st.TotalPages())
	}
	status += "  size " + s.st.PageSize.String()
	if s.st.Loading() {
		status += "  loading..."
	}
	b.WriteString(mutedStyle.Render(status))
	b.WriteString("\n")

	if s.prompt != nil {
		b.WriteString(promptStyle.Render(s.prompt.Description + "  [y/N]"))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("↑/↓ select • ←/→ page • / search • s page size • d delete • r refresh • esc back"))
	b.WriteString("\n")
	return b.String()
}

func (s *resourceScreen) close() {
	s.unsub()
	s.ctl.Gate().Cancel()
	s.cancel()
	s.ctl.Close()
}
