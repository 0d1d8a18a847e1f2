package table

import (
	"fmt"

	"github.com/BinitGoswami/my-placement/internal/model"
)

// Status is the load state of a controller.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is a snapshot of a controller's list. Items is owned by the caller.
type State[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize model.PageSize

	// Search is the raw search input; CommittedSearch is the term the
	// current list was fetched with.
	Search          string
	CommittedSearch string

	Epoch  uint64
	Status Status

	// Err is the last fetch failure. Items still hold the last good load.
	Err error
}

// Loading reports whether a fetch is in flight.
func (s State[T]) Loading() bool { return s.Status == StatusLoading }

// Params returns the list parameters of the current view.
func (s State[T]) Params() model.ListParams {
	return model.ListParams{Search: s.CommittedSearch, Page: s.Page, PageSize: s.PageSize}
}

// TotalPages returns the number of pages of the current result.
func (s State[T]) TotalPages() int {
	return model.TotalPages(s.Total, s.PageSize)
}

// Paged reports whether page navigation applies. It does not with an
// unbounded page size.
func (s State[T]) Paged() bool { return !s.PageSize.IsUnbounded() }

// HasNext reports whether a next page exists.
func (s State[T]) HasNext() bool { return s.Paged() && s.Page < s.TotalPages() }

// HasPrev reports whether a previous page exists.
func (s State[T]) HasPrev() bool { return s.Paged() && s.Page > 1 }

// Range describes the visible slice of the result, e.g. "Showing 11–20 of 25".
func (s State[T]) Range() string {
	if !s.Paged() {
		return fmt.Sprintf("Showing all %d records", s.Total)
	}
	offset := s.Params().Offset()
	from := min(offset+1, s.Total)
	to := min(offset+int(s.PageSize.OrDefault()), s.Total)
	return fmt.Sprintf("Showing %d–%d of %d", from, to, s.Total)
}

// EmptyMessage returns the empty-state text, or "" when there are items.
// A committed search term distinguishes "nothing matches" from "nothing exists".
func (s State[T]) EmptyMessage() string {
	if len(s.Items) > 0 {
		return ""
	}
	if s.CommittedSearch != "" {
		return fmt.Sprintf("No records matching '%s'.", s.CommittedSearch)
	}
	return "No records found."
}
