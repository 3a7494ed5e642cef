// Package modal renders dismissible dialogs around the form engine.
// A closed modal produces no markup at all, so every open is a fresh
// mount with a fresh initial snapshot — the mechanism that makes
// "changed since open" diffing correct without explicit reset logic.
package modal

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/KevinAshley/webparts/internal/forms"
)

//go:embed templates/*
var templateFS embed.FS

var modalTmpl = template.Must(template.ParseFS(templateFS, "templates/modal.html"))

type modalData struct {
	Title      string
	CloseURL   string
	FormID     string
	Processing bool
	OKDisabled bool
	Prepend    template.HTML
	Body       template.HTML
}

// Form wraps a caller-owned engine in a dialog. The OK button drives
// the engine's submit path through the form element id, equivalent to
// pressing Enter in any field; closing discards the in-progress edits
// because the next render builds a fresh engine.
type Form struct {
	Title  string
	Open   bool
	Engine *forms.Engine
	// Action is where the form posts; CloseURL dismisses the dialog.
	Action   string
	CloseURL string
	FormID   string
	SiteKey  string
	// Prepend is optional markup above the form (auth dialogs put
	// their provider blurb here).
	Prepend template.HTML
	// Processing disables every control while a collaborator call is
	// in flight.
	Processing bool
}

// Render writes the dialog, or nothing while the modal is closed.
// Submission stays disabled until some field differs from its initial
// value, preventing no-op submits.
func (m Form) Render(w io.Writer) error {
	if !m.Open {
		return nil
	}
	eng := m.Engine
	eng.Processing = m.Processing
	eng.HideSubmitButton = true

	var buf bytes.Buffer
	if err := eng.Render(&buf, forms.RenderConfig{
		Action:         m.Action,
		FormID:         m.FormID,
		SiteKey:        m.SiteKey,
		SubmitDisabled: !eng.Dirty(),
	}); err != nil {
		return err
	}
	body := template.HTML(buf.String())

	return modalTmpl.Execute(w, modalData{
		Title:      m.Title,
		CloseURL:   m.CloseURL,
		FormID:     m.FormID,
		Processing: m.Processing,
		OKDisabled: m.Processing || !eng.Dirty(),
		Prepend:    m.Prepend,
		Body:       body,
	})
}

// Uncontrolled owns its engine so callers don't have to: the engine is
// seeded from InitialValues on every render while open, and no state
// survives a close/reopen cycle.
type Uncontrolled struct {
	Title             string
	Open              bool
	InitialValues     forms.Values
	Fields            []forms.Field
	SubmitChangesOnly bool
	Action            string
	CloseURL          string
	FormID            string
	SiteKey           string
	Prepend           template.HTML
	Processing        bool
}

// Render mounts a fresh engine and renders the dialog, or nothing
// while closed.
func (u Uncontrolled) Render(w io.Writer) error {
	if !u.Open {
		return nil
	}
	eng := forms.NewEngine(u.Fields, u.InitialValues)
	eng.SubmitChangesOnly = u.SubmitChangesOnly
	return Form{
		Title:      u.Title,
		Open:       true,
		Engine:     eng,
		Action:     u.Action,
		CloseURL:   u.CloseURL,
		FormID:     u.FormID,
		SiteKey:    u.SiteKey,
		Prepend:    u.Prepend,
		Processing: u.Processing,
	}.Render(w)
}
