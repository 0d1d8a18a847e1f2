package model

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSize is the number of records per page. Unbounded fetches every
// matching record in one call. The zero value means DefaultPageSize.
type PageSize int

// Unbounded is the "all" page size.
const Unbounded PageSize = -1

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize PageSize = 10

// ParsePageSize parses "all" or a positive integer.
func ParsePageSize(s string) (PageSize, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "all" {
		return Unbounded, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("page size %q: must be a positive integer or \"all\"", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page size %d: must be at least 1", n)
	}
	return PageSize(n), nil
}

// IsUnbounded reports whether the page size fetches all records.
func (p PageSize) IsUnbounded() bool {
	return p < 0
}

// OrDefault resolves the zero value to DefaultPageSize.
func (p PageSize) OrDefault() PageSize {
	if p == 0 {
		return DefaultPageSize
	}
	return p
}

// String renders the page size the way the backend's limit parameter expects it.
func (p PageSize) String() string {
	if p.IsUnbounded() {
		return "all"
	}
	return strconv.Itoa(int(p.OrDefault()))
}

// ListParams are the query parameters of a paginated list request.
type ListParams struct {
	Search   string
	Page     int
	PageSize PageSize
}

// Offset returns the zero-based index of the first record on the page.
func (p ListParams) Offset() int {
	if p.PageSize.IsUnbounded() || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * int(p.PageSize.OrDefault())
}

// ListResult is one page of records plus the total number of matches.
type ListResult[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// TotalPages returns ceil(total/pageSize), at least 1.
func TotalPages(total int, size PageSize) int {
	if size.IsUnbounded() || total <= 0 {
		return 1
	}
	n := int(size.OrDefault())
	return (total + n - 1) / n
}
