package crud

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/modal"
	"github.com/KevinAshley/webparts/internal/table"
)

//go:embed templates/*
var templateFS embed.FS

var fallbackTmpl = template.Must(template.ParseFS(templateFS, "templates/fallback.html"))

// deleteFields is the delete-confirm form: a single required checkbox,
// so the OK button stays disabled until the user actively confirms.
var deleteFields = []forms.Field{{
	ID:       "confirmation",
	Label:    "Yes, confirm deletion",
	Kind:     forms.Checkbox,
	Required: true,
}}

// DeleteConfirmFields returns the delete modal's field set, for
// handlers that replay a failed confirmation submission.
func DeleteConfirmFields() []forms.Field { return deleteFields }

// ViewState is the request-scoped state of the composition: the table
// state plus which (if any) of the three modals is open.
type ViewState struct {
	Table     table.State
	Adding    bool
	EditingID int // 0 means no edit modal
	Deleting  bool
}

// ParseViewState reads the composition state from query parameters.
func ParseViewState(q url.Values, defaultOrderBy string) ViewState {
	vs := ViewState{Table: table.ParseState(q, defaultOrderBy)}
	vs.Adding = q.Get("add") == "1"
	if id, err := strconv.Atoi(q.Get("edit")); err == nil && id > 0 {
		vs.EditingID = id
	}
	vs.Deleting = q.Get("delete") == "1"
	return vs
}

// Query encodes the composition state back into query parameters.
func (vs ViewState) Query() url.Values {
	q := vs.Table.Query()
	if vs.Adding {
		q.Set("add", "1")
	}
	if vs.EditingID > 0 {
		q.Set("edit", strconv.Itoa(vs.EditingID))
	}
	if vs.Deleting {
		q.Set("delete", "1")
	}
	return q
}

func (c *Controller) viewURL(vs ViewState, mutate func(v *ViewState)) string {
	next := vs
	next.Table.Selected = append([]int(nil), vs.Table.Selected...)
	mutate(&next)
	q := next.Query().Encode()
	if q == "" {
		return c.cfg.BaseURL
	}
	return c.cfg.BaseURL + "?" + q
}

func (c *Controller) actionURL(vs ViewState, op string) string {
	q := vs.Query().Encode()
	u := c.cfg.BaseURL + "/" + op
	if q != "" {
		u += "?" + q
	}
	return u
}

// RenderOptions carries the session-dependent bits of a render.
type RenderOptions struct {
	// Authenticated switches between the full composition and the
	// read-only call-to-action fallback.
	Authenticated bool
	LoginURL      string
	SignupURL     string
	// AddEngine / EditEngine / DeleteEngine override the matching
	// modal's fresh engine with one carrying a failed submission, so
	// the user's input survives the error round-trip.
	AddEngine    *forms.Engine
	EditEngine   *forms.Engine
	DeleteEngine *forms.Engine
}

// Render writes the whole composition: the table, then whichever of
// the add / edit / delete-confirm modals is open. Without a session it
// renders the read-only fallback with every mutation entry point
// suppressed — a view-layer gate only, the resource enforces for real.
func (c *Controller) Render(w io.Writer, vs ViewState, opt RenderOptions) error {
	if !opt.Authenticated {
		return c.renderFallback(w, vs, opt)
	}

	closeURL := c.viewURL(vs, func(v *ViewState) {
		v.Adding = false
		v.EditingID = 0
		v.Deleting = false
	})

	view := table.View{
		Title:     c.cfg.Heading,
		Columns:   c.cfg.Columns,
		Rows:      c.Items(),
		State:     vs.Table,
		Loading:   c.Loading(),
		BaseURL:   c.cfg.BaseURL,
		AddURL:    c.viewURL(vs, func(v *ViewState) { v.Adding = true }),
		DeleteURL: c.viewURL(vs, func(v *ViewState) { v.Deleting = true }),
		EditURL: func(id int) string {
			return c.viewURL(vs, func(v *ViewState) { v.EditingID = id })
		},
	}
	if err := view.Render(w); err != nil {
		return err
	}

	processing := c.Processing()

	err := c.renderModal(w, modal.Uncontrolled{
		Title:         "Add New " + c.cfg.Singular,
		Open:          vs.Adding,
		Fields:        c.cfg.Fields,
		InitialValues: emptyValues(c.cfg.Fields),
		Action:        c.actionURL(vs, "add"),
		CloseURL:      closeURL,
		FormID:        "wp-add-form",
		SiteKey:       c.cfg.SiteKey,
		Processing:    processing,
	}, opt.AddEngine)
	if err != nil {
		return err
	}

	// The edit modal only opens while its target is still in the
	// loaded set; a vanished id renders nothing.
	if vs.EditingID > 0 {
		if target, ok := c.Item(vs.EditingID); ok {
			err := c.renderModal(w, modal.Uncontrolled{
				Title:             "Edit " + c.cfg.Singular,
				Open:              true,
				Fields:            c.cfg.Fields,
				InitialValues:     rowValues(target, c.cfg.Fields),
				SubmitChangesOnly: true,
				Action:            c.actionURL(vs, "edit/"+strconv.Itoa(vs.EditingID)),
				CloseURL:          closeURL,
				FormID:            "wp-edit-form",
				SiteKey:           c.cfg.SiteKey,
				Processing:        processing,
			}, opt.EditEngine)
			if err != nil {
				return err
			}
		}
	}

	return c.renderModal(w, modal.Uncontrolled{
		Title:         "Delete " + countLabel(len(vs.Table.Selected), c.cfg.Singular, c.cfg.Plural) + "?",
		Open:          vs.Deleting && len(vs.Table.Selected) > 0,
		Fields:        deleteFields,
		InitialValues: forms.Values{"confirmation": false},
		Action:        c.actionURL(vs, "delete"),
		CloseURL:      closeURL,
		FormID:        "wp-delete-form",
		Processing:    processing,
	}, opt.DeleteEngine)
}

// renderModal renders the uncontrolled modal, or the same dialog
// around an override engine when a failed submission is being
// replayed.
func (c *Controller) renderModal(w io.Writer, u modal.Uncontrolled, override *forms.Engine) error {
	if override == nil {
		return u.Render(w)
	}
	return modal.Form{
		Title:      u.Title,
		Open:       u.Open,
		Engine:     override,
		Action:     u.Action,
		CloseURL:   u.CloseURL,
		FormID:     u.FormID,
		SiteKey:    u.SiteKey,
		Processing: u.Processing,
	}.Render(w)
}

func (c *Controller) renderFallback(w io.Writer, vs ViewState, opt RenderOptions) error {
	var buf bytes.Buffer
	err := fallbackTmpl.Execute(&buf, map[string]any{
		"Heading":   c.cfg.Heading,
		"LoginURL":  opt.LoginURL,
		"SignupURL": opt.SignupURL,
	})
	if err != nil {
		return err
	}
	view := table.View{
		Title:        c.cfg.Heading,
		Columns:      c.cfg.Columns,
		State:        vs.Table,
		BaseURL:      c.cfg.BaseURL,
		EmptyContent: template.HTML(buf.String()),
	}
	return view.Render(w)
}

// emptyValues seeds the add form: empty string for text-like fields,
// false for checkboxes.
func emptyValues(fields []forms.Field) forms.Values {
	vals := forms.Values{}
	for _, f := range fields {
		if f.Kind == forms.Checkbox {
			vals[f.ID] = false
			continue
		}
		vals[f.ID] = ""
	}
	return vals
}

// rowValues seeds the edit form from the target row, field by field,
// so the diff baseline matches what the user sees.
func rowValues(row table.Row, fields []forms.Field) forms.Values {
	vals := forms.Values{}
	for _, f := range fields {
		vals[f.ID] = row.Cells[f.ID]
	}
	return vals
}
