// Package forms implements the shared form engine behind the modal
// dialogs: field descriptors, a live value buffer diffed against an
// immutable initial snapshot, a honeypot check, and HTML rendering for
// each field kind.
package forms

import "fmt"

// Kind discriminates how a field is rendered and how its submitted
// value is interpreted. The set is closed — rendering an unknown kind
// panics so a typo fails during development instead of silently
// falling through.
type Kind string

const (
	Text         Kind = "text"
	Email        Kind = "email"
	Password     Kind = "password"
	Checkbox     Kind = "checkbox"
	Verification Kind = "verification"
)

// IsTextual reports whether the kind renders as a text-like input.
func (k Kind) IsTextual() bool {
	switch k {
	case Text, Email, Password:
		return true
	case Checkbox, Verification:
		return false
	}
	panic(fmt.Sprintf("forms: unknown field kind %q", k))
}

// Field describes one form control. Fields are immutable and defined
// by the caller per form; ID must be unique within a form.
type Field struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Kind         Kind   `json:"kind"`
	Required     bool   `json:"required"`
	Disabled     bool   `json:"disabled"`
	Multiline    bool   `json:"multiline"`
	AutoComplete bool   `json:"autoComplete"`
}

// Values is a flat mapping of field ID to field value. Allowed value
// types are string, bool, numbers, time.Time and nil; an empty string
// is the canonical "no value" for text-like fields.
type Values map[string]any

// Clone returns a shallow copy. Values never share storage between a
// live edit buffer and an initial snapshot.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
