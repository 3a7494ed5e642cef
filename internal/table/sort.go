package table

import (
	"sort"
	"strings"
	"time"
)

// compareCells orders two cell values of the same column type. Smaller
// sorts first; the caller applies direction and the null policy.
func compareCells(a, b any, typ ColumnType) int {
	switch typ {
	case NumberColumn:
		af, _ := cellNumber(a)
		bf, _ := cellNumber(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case DateColumn:
		at, bt := cellTime(a), cellTime(b)
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		}
		return 0
	case BooleanColumn:
		ab, bb := truthyCell(a), truthyCell(b)
		switch {
		case !ab && bb:
			return -1
		case ab && !bb:
			return 1
		}
		return 0
	}
	return strings.Compare(cellString(a), cellString(b))
}

// Compare orders two rows by the given column and direction. Null
// cells rank after any non-null cell in either direction (explicit
// prechecks, applied before the direction flip); everything else
// compares by the column type.
func Compare(a, b Row, col Column, ord Order) int {
	av, bv := a.Cells[col.ID], b.Cells[col.ID]
	if av == nil || bv == nil {
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return 1
		default:
			return -1
		}
	}
	c := compareCells(av, bv, col.Type)
	if ord == Desc {
		return -c
	}
	return c
}

// SortRows returns a sorted copy of rows. Ties keep their relative
// order from the input slice, so equal rows render deterministically
// in both directions.
func SortRows(rows []Row, col Column, ord Order) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j], col, ord) < 0
	})
	return out
}

// ColumnByID finds a column descriptor, falling back to a text column
// keyed by id so an unknown orderBy still sorts deterministically.
func ColumnByID(columns []Column, id string) Column {
	for _, c := range columns {
		if c.ID == id {
			return c
		}
	}
	return Column{ID: id, Type: TextColumn}
}

func cellNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cellTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func truthyCell(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	}
	f, ok := cellNumber(v)
	return ok && f != 0
}

func cellString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return formatCell(v, TextColumn)
}
