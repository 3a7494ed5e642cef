package table

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoView() View {
	var rows []Row
	for i := 1; i <= 12; i++ {
		rows = append(rows, Row{ID: i, Cells: map[string]any{
			"id":   i,
			"name": fmt.Sprintf("item %02d", i),
		}})
	}
	return View{
		Title: "Items",
		Columns: []Column{
			{ID: "id", Label: "ID", Type: NumberColumn},
			{ID: "name", Label: "Name", Type: TextColumn},
		},
		Rows:    rows,
		State:   NewState("id"),
		BaseURL: "/items",
		AddURL:  "/items?add=1",
	}
}

func renderView(t *testing.T, v View) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))
	return buf.String()
}

func TestRender_TitleAndAddTrigger(t *testing.T) {
	html := renderView(t, demoView())

	assert.Contains(t, html, "Items")
	assert.Contains(t, html, `href="/items?add=1"`)
	assert.Contains(t, html, "1–10 of 12")
	assert.NotContains(t, html, "selected</span>")
}

func TestRender_SelectionSwapsToolbar(t *testing.T) {
	v := demoView()
	v.State.Selected = []int{1, 3}
	v.DeleteURL = "/items?delete=1"
	html := renderView(t, v)

	assert.Contains(t, html, "2 selected")
	assert.Contains(t, html, `href="/items?delete=1"`)
}

func TestRender_SkeletonsWhileLoading(t *testing.T) {
	v := demoView()
	v.Rows = nil
	v.Loading = true
	html := renderView(t, v)

	assert.Contains(t, html, "wp-skeleton")
	assert.Contains(t, html, "0–0 of 0")
}

func TestRender_RowsWinOverSkeletons(t *testing.T) {
	v := demoView()
	v.Loading = true
	html := renderView(t, v)

	assert.NotContains(t, html, "wp-skeleton")
	assert.Contains(t, html, "item 01")
}

func TestRender_SecondPagePadsShortPage(t *testing.T) {
	v := demoView()
	v.State.Page = 1
	html := renderView(t, v)

	assert.Contains(t, html, "11–12 of 12")
	assert.Contains(t, html, "wp-padding")
}

func TestRender_EditColumnOnlyWhenWired(t *testing.T) {
	v := demoView()
	assert.NotContains(t, renderView(t, v), "wp-edit-cell")

	v.EditURL = func(id int) string { return fmt.Sprintf("/items?edit=%d", id) }
	html := renderView(t, v)
	assert.Contains(t, html, "wp-edit-cell")
	assert.Contains(t, html, `href="/items?edit=1"`)
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	assert.Equal(t, "March 14, 2026, 3:09:26 PM", formatCell(ts, DateColumn))
	assert.Equal(t, "true", formatCell(true, BooleanColumn))
	assert.Equal(t, "", formatCell(false, BooleanColumn))
	assert.Equal(t, "", formatCell(nil, TextColumn))
	assert.Equal(t, "42", formatCell(42, NumberColumn))
}
