package forms

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

var formTmpl = template.Must(template.ParseFS(templateFS, "templates/form.html"))

// RenderConfig carries the per-render options the engine itself does
// not own: where the form posts and how the widget collaborator is
// addressed.
type RenderConfig struct {
	// Action is the URL the form posts to.
	Action string
	// FormID becomes the form element id, so dialog chrome can target
	// it with a requestSubmit trigger.
	FormID string
	// SiteKey configures the verification widget, when any field has
	// the verification kind.
	SiteKey string
	// SubmitDisabled disables the submit control (modal forms pass
	// true while the changed-values delta is empty).
	SubmitDisabled bool
}

// control is the closed dispatch target for one rendered field.
type control struct {
	ID        string
	Label     string
	InputType string
	Control   string // "text", "textarea", "checkbox", "verification"
	Value     string
	Checked   bool
	Required  bool
	Disabled  bool
	AutoFocus bool
	NoAutofill bool
	SiteKey   string
}

// controlFor maps a field descriptor to its render form. The switch is
// exhaustive over Kind; an unrecognized kind panics.
func controlFor(f Field, value any, cfg RenderConfig) control {
	c := control{
		ID:         f.ID,
		Label:      f.Label,
		Required:   f.Required,
		Disabled:   f.Disabled,
		NoAutofill: !f.AutoComplete,
	}
	switch f.Kind {
	case Verification:
		c.Control = "verification"
		c.Value = DisplayValue(value)
		c.SiteKey = cfg.SiteKey
	case Checkbox:
		c.Control = "checkbox"
		c.Checked = Truthy(value)
	case Text, Email, Password:
		c.InputType = string(f.Kind)
		c.Control = "text"
		if f.Multiline {
			c.Control = "textarea"
		}
		c.Value = DisplayValue(value)
	default:
		panic(fmt.Sprintf("forms: unknown field kind %q", f.Kind))
	}
	return c
}

// DisplayValue formats a field value for display. Empty string is the
// canonical no-value representation; nil never reaches the markup.
func DisplayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return fmt.Sprint(v)
}

type formData struct {
	Action         string
	FormID         string
	Processing     bool
	Controls       []control
	Snapshot       string
	HoneypotName   string
	SnapshotName   string
	HideSubmit     bool
	SubmitDisabled bool
}

// Render writes the complete form markup: every field control, the
// hidden honeypot, the serialized initial snapshot, and the submit
// button (always present so Enter submits, hidden when the visible
// button lives in the dialog chrome).
func (e *Engine) Render(w io.Writer, cfg RenderConfig) error {
	snap, err := json.Marshal(e.initial)
	if err != nil {
		return fmt.Errorf("encoding initial snapshot: %w", err)
	}
	data := formData{
		Action:         cfg.Action,
		FormID:         cfg.FormID,
		Processing:     e.Processing,
		Snapshot:       string(snap),
		HoneypotName:   honeypotName,
		SnapshotName:   snapshotName,
		HideSubmit:     e.HideSubmitButton,
		SubmitDisabled: cfg.SubmitDisabled || e.Processing,
	}
	for i, f := range e.fields {
		c := controlFor(f, e.values[f.ID], cfg)
		if e.Processing {
			c.Disabled = true
		}
		c.AutoFocus = i == 0 && c.Control != "verification"
		data.Controls = append(data.Controls, c)
	}
	return formTmpl.Execute(w, data)
}
