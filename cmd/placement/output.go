package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"text/tabwriter"

	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/notify"
	"github.com/BinitGoswami/my-placement/internal/table"
	"github.com/BinitGoswami/my-placement/internal/ui"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// recordFields returns the columns to show for res, falling back to every
// field present in items.
func recordFields(res model.Resource, items []model.Record) []string {
	if len(res.Columns) > 0 {
		return res.Columns
	}
	seen := map[string]bool{}
	var fields []string
	for _, rec := range items {
		for _, k := range rec.Keys() {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	return fields
}

func printRecordTable(w io.Writer, res model.Resource, items []model.Record) {
	fields := recordFields(res, items)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = strings.ToUpper(f)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, rec := range items {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = rec.String(f)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// printListFooter prints the range line, or the empty-state text.
func printListFooter(w io.Writer, st table.State[model.Record]) {
	if msg := st.EmptyMessage(); msg != "" {
		fmt.Fprintln(w, ui.RenderMuted(msg))
		return
	}
	line := st.Range()
	if st.Paged() && st.TotalPages() > 1 {
		line += fmt.Sprintf(" (page %d of %d)", st.Page, st.TotalPages())
	}
	fmt.Fprintln(w, ui.RenderMuted(line))
}

func printRecordDetail(w io.Writer, rec model.Record) {
	keys := rec.Keys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		fmt.Fprintf(w, "%-*s  %s\n", width+1, k+":", rec.String(k))
	}
}

// cliNotifier prints controller notifications to stderr as they happen.
type cliNotifier struct {
	w      io.Writer
	failed atomic.Bool
}

func newCLINotifier() *cliNotifier {
	return &cliNotifier{w: os.Stderr}
}

func (n *cliNotifier) Success(msg string) { n.print(notify.KindSuccess, msg) }
func (n *cliNotifier) Info(msg string)    { n.print(notify.KindInfo, msg) }

func (n *cliNotifier) Error(msg string) {
	n.failed.Store(true)
	n.print(notify.KindError, msg)
}

func (n *cliNotifier) print(kind notify.Kind, msg string) {
	if jsonOutput && kind != notify.KindError {
		return
	}
	fmt.Fprintln(n.w, ui.RenderNotification(kind, msg))
}

// result returns errReported once an error has been shown.
func (n *cliNotifier) result() error {
	if n.failed.Load() {
		return errReported
	}
	return nil
}
