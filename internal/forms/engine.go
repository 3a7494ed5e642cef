package forms

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Form post field names reserved by the engine. The honeypot is a
// visually hidden checkbox no human ever checks; the snapshot field
// carries the initial values captured when the form was rendered so a
// stateless server can diff against the same baseline the user saw.
const (
	honeypotName = "hp_robots"
	snapshotName = "__initial"
)

// SubmitFunc receives the submitted values (full set or changed-only
// delta, depending on the engine configuration).
type SubmitFunc func(values Values) error

// Engine owns the live value buffer for one mounted form. The initial
// snapshot is captured once at construction and never re-captured; the
// changed-values delta is always derived from (live buffer, snapshot).
type Engine struct {
	fields  []Field
	values  Values
	initial Values

	honeypot bool

	// SubmitChangesOnly shrinks the outbound payload to only the keys
	// that differ from the initial snapshot.
	SubmitChangesOnly bool
	// Processing disables every control and the submit path while a
	// collaborator call is in flight.
	Processing bool
	// HideSubmitButton keeps the submit button in the markup (so Enter
	// still submits) but visually hides it, for forms whose visible
	// button lives in the dialog chrome.
	HideSubmitButton bool
}

// NewEngine seeds a fresh engine from the caller's initial values.
// Passing nil starts from an empty buffer.
func NewEngine(fields []Field, initial Values) *Engine {
	if initial == nil {
		initial = Values{}
	}
	return &Engine{
		fields:  fields,
		values:  initial.Clone(),
		initial: initial.Clone(),
	}
}

// Fields returns the field descriptors in render order.
func (e *Engine) Fields() []Field { return e.fields }

// Value returns the current buffer value for a field.
func (e *Engine) Value(id string) any { return e.values[id] }

// Values returns a copy of the live buffer.
func (e *Engine) Values() Values { return e.values.Clone() }

// Initial returns a copy of the immutable snapshot.
func (e *Engine) Initial() Values { return e.initial.Clone() }

// SetField merges one value into the buffer. For checkbox kinds the
// stored value is the logical negation of the current value, whatever
// raw value the event carried.
func (e *Engine) SetField(id string, value any) {
	if f, ok := e.field(id); ok && f.Kind == Checkbox {
		e.values[id] = !Truthy(e.values[id])
		return
	}
	e.values[id] = value
}

// Changed returns the delta between the live buffer and the snapshot.
func (e *Engine) Changed() Values {
	return Changed(e.values, e.initial)
}

// Dirty reports whether any field differs from its initial value.
// Modal forms disable their submit control while this is false.
func (e *Engine) Dirty() bool {
	return len(e.Changed()) > 0
}

// Submit runs fn with the submission payload. A checked honeypot means
// a bot filled the form: the submission is silently dropped. When
// SubmitChangesOnly is set fn receives the changed-values delta,
// otherwise the full buffer.
func (e *Engine) Submit(fn SubmitFunc) error {
	if e.honeypot {
		return nil
	}
	if e.SubmitChangesOnly {
		return fn(e.Changed())
	}
	return fn(e.Values())
}

// RequestSubmit lets an external container (a dialog OK button) drive
// the exact same path as a native form submission.
func (e *Engine) RequestSubmit(fn SubmitFunc) error {
	return e.Submit(fn)
}

// ParseRequest fills the engine from a posted form: the visible field
// values, the honeypot state, and the initial snapshot the form was
// rendered with. Checkbox fields read as checked/unchecked; everything
// else reads as its posted string.
func (e *Engine) ParseRequest(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parsing form: %w", err)
	}
	if raw := r.PostForm.Get(snapshotName); raw != "" {
		snap := Values{}
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return fmt.Errorf("decoding initial snapshot: %w", err)
		}
		e.initial = snap
	}
	e.honeypot = r.PostForm.Get(honeypotName) != ""
	for _, f := range e.fields {
		if f.Kind == Checkbox {
			e.values[f.ID] = r.PostForm.Get(f.ID) != ""
			continue
		}
		e.values[f.ID] = r.PostForm.Get(f.ID)
	}
	return nil
}

// Bot reports whether the parsed submission tripped the honeypot.
func (e *Engine) Bot() bool { return e.honeypot }

func (e *Engine) field(id string) (Field, bool) {
	for _, f := range e.fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}
