// Package crud composes one sortable data table with three
// uncontrolled modal forms (add, edit, delete-confirm) against a
// caller-supplied resource contract, orchestrating the
// list-reload-after-mutation cycle.
package crud

import (
	"context"
	"fmt"

	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/table"
)

// Outcome is the discriminated result every resource call returns.
// Collaborators report business failures through ErrorMessage instead
// of panicking past the boundary.
type Outcome struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// ListOutcome carries the full current row set on success.
type ListOutcome struct {
	Outcome
	Items []table.Row `json:"items,omitempty"`
}

// OK is the zero-friction success outcome.
func OK() Outcome { return Outcome{Success: true} }

// Fail wraps an error message into a failed outcome.
func Fail(format string, args ...any) Outcome {
	return Outcome{ErrorMessage: fmt.Sprintf(format, args...)}
}

// Resource is the CRUD contract the controller drives. Real
// enforcement (ownership, authorization) happens inside the resource;
// the view layer only gates entry points.
type Resource interface {
	List(ctx context.Context) ListOutcome
	Create(ctx context.Context, values forms.Values) Outcome
	Update(ctx context.Context, id int, changed forms.Values) Outcome
	DeleteMany(ctx context.Context, ids []int) Outcome
}

// countLabel renders "1 item" / "3 items" for toast messages.
func countLabel(count int, singular, plural string) string {
	label := singular
	if count > 1 {
		label = plural
	}
	return fmt.Sprintf("%d %s", count, label)
}
