package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/notify"
	"github.com/BinitGoswami/my-placement/internal/session"
	"github.com/BinitGoswami/my-placement/internal/table"
	"github.com/BinitGoswami/my-placement/internal/ui"
)

func withSession(t *testing.T, sess *model.Session) {
	t.Helper()
	prev := sessions
	sessions = session.NewStore()
	if sess != nil {
		if err := sessions.Set(*sess); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	t.Cleanup(func() { sessions = prev })
}

func TestGate(t *testing.T) {
	admin := &model.Session{Identity: "1", Name: "Asha", Role: model.RoleAdmin}
	student := &model.Session{Identity: "2", Role: model.RoleStudent}

	tests := []struct {
		name    string
		sess    *model.Session
		cmd     *cobra.Command
		args    []string
		wantErr string
	}{
		{"login signed out", nil, loginCmd, nil, ""},
		{"login signed in", admin, loginCmd, nil, "already signed in as Asha"},
		{"whoami signed out", nil, whoamiCmd, nil, "not signed in"},
		{"whoami signed in", student, whoamiCmd, nil, ""},
		{"admin lists departments", admin, listCmd, []string{"departments"}, ""},
		{"student lists departments", student, listCmd, []string{"departments"}, "not available to student accounts"},
		{"student lists internships", student, listCmd, []string{"internships"}, ""},
		{"signed out deletes", nil, deleteCmd, []string{"departments", "1"}, "not signed in"},
		{"unknown resource", admin, showCmd, []string{"widgets", "1"}, "unknown resource"},
		{"health is ungated", nil, healthCmd, nil, ""},
		{"browse gates itself", nil, browseCmd, []string{"departments"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withSession(t, tt.sess)
			err := gate(tt.cmd, tt.args)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("gate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("gate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestColorizeHelpOutput(t *testing.T) {
	ui.SetColor(true)
	t.Cleanup(func() { ui.SetColor(false) })

	in := "Records:\n  list        List records\n\nFlags:\n      --limit string   records per page (default \"10\")\n"
	out := colorizeHelpOutput(in)
	if out == in {
		t.Fatal("help output was not styled")
	}
	for _, want := range []string{"Records:", "list", "List records", "string"} {
		if !strings.Contains(out, want) {
			t.Errorf("styled output lost %q:\n%s", want, out)
		}
	}
}

func TestPrintRecordTable(t *testing.T) {
	res, _ := model.Lookup("departments")
	var buf bytes.Buffer
	printRecordTable(&buf, res, []model.Record{
		{"id": "1", "name": "Computer Science", "code": "CSE"},
		{"id": "2", "name": "Mechanical"},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "NAME") || !strings.Contains(lines[0], "CODE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Computer Science") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestRecordFieldsFallback(t *testing.T) {
	got := recordFields(model.Resource{Name: "misc"}, []model.Record{
		{"b": 1, "a": 2},
		{"c": 3, "a": 4},
	})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("recordFields() = %v, want [a b c]", got)
	}
}

func TestPrintListFooter(t *testing.T) {
	ui.SetColor(false)
	tests := []struct {
		name string
		st   table.State[model.Record]
		want string
	}{
		{
			name: "empty",
			st:   table.State[model.Record]{PageSize: 10, Page: 1},
			want: "No records found.",
		},
		{
			name: "no matches",
			st:   table.State[model.Record]{PageSize: 10, Page: 1, CommittedSearch: "zzz"},
			want: "No records matching 'zzz'.",
		},
		{
			name: "paged",
			st: table.State[model.Record]{
				Items: []model.Record{{"id": "11"}}, Total: 25, Page: 2, PageSize: 10,
			},
			want: "Showing 11–20 of 25 (page 2 of 3)",
		},
		{
			name: "unbounded",
			st: table.State[model.Record]{
				Items: []model.Record{{"id": "1"}}, Total: 3, Page: 1, PageSize: model.Unbounded,
			},
			want: "Showing all 3 records",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printListFooter(&buf, tt.st)
			if got := strings.TrimSpace(buf.String()); got != tt.want {
				t.Errorf("footer = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLINotifier(t *testing.T) {
	ui.SetColor(false)
	var buf bytes.Buffer
	n := &cliNotifier{w: &buf}
	n.Info("No changes to save.")
	if err := n.result(); err != nil {
		t.Fatalf("result() after info = %v", err)
	}
	n.Error("Failed to delete department.")
	if err := n.result(); err != errReported {
		t.Fatalf("result() after error = %v, want errReported", err)
	}
	out := buf.String()
	if !strings.Contains(out, ui.RenderNotification(notify.KindInfo, "No changes to save.")) {
		t.Errorf("output missing info line:\n%s", out)
	}
	if !strings.Contains(out, "Failed to delete department.") {
		t.Errorf("output missing error line:\n%s", out)
	}
}
