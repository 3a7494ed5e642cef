package table

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

var tableTmpl = template.Must(template.ParseFS(templateFS, "templates/table.html"))

// View is everything one render of the table needs. The table is a
// pure view over the caller's rows: all mutation entry points are
// links back to the caller's URLs.
type View struct {
	Title   string
	Columns []Column
	Rows    []Row
	State   State
	// Loading renders skeleton placeholder rows while true and no rows
	// have arrived yet; real rows win as soon as any exist.
	Loading bool
	// BaseURL is the page path state links point back at.
	BaseURL string
	// AddURL opens the add modal; DeleteURL opens the delete-confirm
	// modal; EditURL opens the edit modal for a row id. Empty values
	// suppress the corresponding trigger.
	AddURL    string
	DeleteURL string
	EditURL   func(id int) string
	// EmptyContent replaces the table body when there are no rows,
	// used by the unauthenticated fallback view.
	EmptyContent template.HTML
}

// formatCell renders one cell for display. A false or null boolean
// shows as empty, matching the table's sparse checkbox-style columns.
func formatCell(v any, typ ColumnType) string {
	if v == nil {
		return ""
	}
	if typ == DateColumn {
		t := cellTime(v)
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006, 3:04:05 PM")
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.Format("January 2, 2006, 3:04:05 PM")
	}
	return fmt.Sprint(v)
}

type headCell struct {
	Label   string
	Active  bool
	Order   Order
	SortURL string
	Numeric bool
}

type bodyRow struct {
	ID        int
	Selected  bool
	ToggleURL string
	EditURL   string
	Cells     []string
}

type sizeOption struct {
	Size   int
	Active bool
	URL    string
}

type tableData struct {
	Title        string
	NumSelected  int
	AddURL       string
	DeleteURL    string
	Head         []headCell
	SelectAllURL string
	AllSelected  bool
	Indeterminate bool
	Rows         []bodyRow
	SkeletonRows []int
	EmptyRows    int
	EmptyContent template.HTML
	HasEdit      bool
	ColSpan      int
	Dense        bool
	DenseURL     string
	Total        int
	RangeLabel   string
	PrevURL      string
	NextURL      string
	SizeOptions  []sizeOption
}

func (v View) stateURL(mutate func(s *State)) string {
	s := v.State
	s.Selected = append([]int(nil), v.State.Selected...)
	mutate(&s)
	q := s.Query().Encode()
	if q == "" {
		return v.BaseURL
	}
	return v.BaseURL + "?" + q
}

// Render writes the full table: toolbar, sortable header with the
// select-all checkbox, body (real rows, skeleton rows, or the caller's
// empty-state content), padding rows, and the pagination footer.
func (v View) Render(w io.Writer) error {
	s := v.State
	col := ColumnByID(v.Columns, s.OrderBy)
	sorted := SortRows(v.Rows, col, s.Order)
	visible := s.Window(sorted)

	data := tableData{
		Title:        v.Title,
		NumSelected:  len(s.Selected),
		AddURL:       v.AddURL,
		DeleteURL:    v.DeleteURL,
		EmptyContent: v.EmptyContent,
		HasEdit:      v.EditURL != nil,
		ColSpan:      len(v.Columns) + 1,
		Dense:        s.Dense,
		Total:        len(v.Rows),
		AllSelected:  len(v.Rows) > 0 && len(s.Selected) == len(v.Rows),
		Indeterminate: len(s.Selected) > 0 && len(s.Selected) < len(v.Rows),
		DenseURL: v.stateURL(func(s *State) { s.Dense = !s.Dense }),
		SelectAllURL: v.stateURL(func(st *State) {
			st.SelectAll(v.Rows, !(len(v.Rows) > 0 && len(s.Selected) == len(v.Rows)))
		}),
	}

	if data.HasEdit {
		data.ColSpan++
	}

	for _, c := range v.Columns {
		data.Head = append(data.Head, headCell{
			Label:   c.Label,
			Active:  s.OrderBy == c.ID,
			Order:   s.Order,
			Numeric: c.Type == NumberColumn,
			SortURL: v.stateURL(func(st *State) { st.RequestSort(c.ID) }),
		})
	}

	if v.Loading && len(v.Rows) == 0 {
		for i := 0; i < s.RowsPerPage; i++ {
			data.SkeletonRows = append(data.SkeletonRows, i)
		}
	} else {
		for _, row := range visible {
			br := bodyRow{
				ID:       row.ID,
				Selected: s.IsSelected(row.ID),
				ToggleURL: v.stateURL(func(st *State) { st.ToggleRow(row.ID) }),
			}
			if v.EditURL != nil {
				br.EditURL = v.EditURL(row.ID)
			}
			for _, c := range v.Columns {
				br.Cells = append(br.Cells, formatCell(row.Cells[c.ID], c.Type))
			}
			data.Rows = append(data.Rows, br)
		}
		data.EmptyRows = s.EmptyRows(len(v.Rows))
	}

	first := s.Page*s.RowsPerPage + 1
	last := s.Page*s.RowsPerPage + len(visible)
	if len(v.Rows) == 0 {
		first = 0
	}
	data.RangeLabel = fmt.Sprintf("%d–%d of %d", first, last, len(v.Rows))
	if s.Page > 0 {
		data.PrevURL = v.stateURL(func(st *State) { st.Page-- })
	}
	if (s.Page+1)*s.RowsPerPage < len(v.Rows) {
		data.NextURL = v.stateURL(func(st *State) { st.Page++ })
	}
	for _, opt := range RowsPerPageOptions {
		data.SizeOptions = append(data.SizeOptions, sizeOption{
			Size:   opt,
			Active: opt == s.RowsPerPage,
			URL: v.stateURL(func(st *State) {
				st.RowsPerPage = opt
				st.Page = 0
			}),
		})
	}

	return tableTmpl.Execute(w, data)
}
