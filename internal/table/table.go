// Package table implements the generic sortable, paginated data table:
// column descriptors, sort/selection/pagination state that round-trips
// through URL query parameters, and HTML rendering with skeleton rows
// while data loads.
package table

import (
	"net/url"
	"strconv"
	"strings"
)

// ColumnType drives both sort comparison and cell formatting.
type ColumnType string

const (
	TextColumn    ColumnType = "text"
	NumberColumn  ColumnType = "number"
	DateColumn    ColumnType = "date"
	BooleanColumn ColumnType = "boolean"
)

// Column describes one table column.
type Column struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Type  ColumnType `json:"type"`
}

// Row is one record. The caller supplies rows wholesale on each load;
// the table keeps no copy beyond the current render.
type Row struct {
	ID    int
	Cells map[string]any
}

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// State holds everything the table needs beyond the rows themselves.
// It encodes to and decodes from URL query values so a server-rendered
// table carries its state across requests.
type State struct {
	OrderBy     string
	Order       Order
	Page        int
	RowsPerPage int
	Dense       bool
	Selected    []int
}

// RowsPerPageOptions are the page sizes offered in the footer.
var RowsPerPageOptions = []int{10, 25, 50}

// NewState returns the default state for a table.
func NewState(defaultOrderBy string) State {
	return State{
		OrderBy:     defaultOrderBy,
		Order:       Asc,
		RowsPerPage: RowsPerPageOptions[0],
	}
}

// ParseState reads table state from query parameters, falling back to
// defaults for anything absent or malformed.
func ParseState(q url.Values, defaultOrderBy string) State {
	s := NewState(defaultOrderBy)
	if v := q.Get("orderBy"); v != "" {
		s.OrderBy = v
	}
	if q.Get("order") == string(Desc) {
		s.Order = Desc
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n >= 0 {
		s.Page = n
	}
	if n, err := strconv.Atoi(q.Get("perPage")); err == nil {
		for _, opt := range RowsPerPageOptions {
			if n == opt {
				s.RowsPerPage = n
			}
		}
	}
	s.Dense = q.Get("dense") == "1"
	if raw := q.Get("selected"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.Atoi(part); err == nil {
				s.Selected = append(s.Selected, id)
			}
		}
	}
	return s
}

// Query encodes the state back into query parameters.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.OrderBy != "" {
		q.Set("orderBy", s.OrderBy)
	}
	if s.Order == Desc {
		q.Set("order", string(Desc))
	}
	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.RowsPerPage != RowsPerPageOptions[0] {
		q.Set("perPage", strconv.Itoa(s.RowsPerPage))
	}
	if s.Dense {
		q.Set("dense", "1")
	}
	if len(s.Selected) > 0 {
		parts := make([]string, len(s.Selected))
		for i, id := range s.Selected {
			parts[i] = strconv.Itoa(id)
		}
		q.Set("selected", strings.Join(parts, ","))
	}
	return q
}

// RequestSort toggles the direction when the same column is selected
// again, otherwise sorts the new column ascending.
func (s *State) RequestSort(columnID string) {
	if s.OrderBy == columnID && s.Order == Asc {
		s.Order = Desc
		return
	}
	s.OrderBy = columnID
	s.Order = Asc
}

// SelectAll replaces the selection with every known row id, or clears
// it entirely.
func (s *State) SelectAll(rows []Row, checked bool) {
	if !checked {
		s.Selected = nil
		return
	}
	s.Selected = make([]int, len(rows))
	for i, r := range rows {
		s.Selected[i] = r.ID
	}
}

// ToggleRow adds or removes one id, preserving the relative order of
// the rest of the selection.
func (s *State) ToggleRow(id int) {
	for i, sel := range s.Selected {
		if sel == id {
			s.Selected = append(s.Selected[:i:i], s.Selected[i+1:]...)
			return
		}
	}
	s.Selected = append(s.Selected, id)
}

// IsSelected reports whether a row id is in the selection.
func (s State) IsSelected(id int) bool {
	for _, sel := range s.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

// Window returns the visible slice of the sorted rows for the current
// page: rows [page*size, page*size+size).
func (s State) Window(sorted []Row) []Row {
	start := s.Page * s.RowsPerPage
	if start >= len(sorted) {
		return nil
	}
	end := start + s.RowsPerPage
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end]
}

// EmptyRows is the number of placeholder rows padding the final page,
// so the layout does not jump when the last page is short.
func (s State) EmptyRows(total int) int {
	if s.Page == 0 {
		return 0
	}
	empty := (s.Page+1)*s.RowsPerPage - total
	if empty < 0 {
		return 0
	}
	return empty
}

// PageCount returns how many pages the row set spans.
func (s State) PageCount(total int) int {
	if total == 0 {
		return 1
	}
	return (total + s.RowsPerPage - 1) / s.RowsPerPage
}
