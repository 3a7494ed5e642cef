package crud

import (
	"context"
	"sync"

	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/table"
	"github.com/KevinAshley/webparts/internal/toast"
)

// Config describes one resource's table and forms.
type Config struct {
	// Heading titles the table; Singular and Plural label items in
	// toast messages ("todo item", "todo items").
	Heading  string
	Singular string
	Plural   string

	Columns        []table.Column
	Fields         []forms.Field
	DefaultOrderBy string

	// BaseURL is the page path the table and its modals live under.
	BaseURL string
	// SiteKey configures verification fields, when present.
	SiteKey string
}

// Controller runs the mutation state machine for one resource:
// Idle → modal open → processing → (success: close, reload, toast) or
// (failure: stay open, toast). It also guards overlapping list reloads
// with a sequence number so a stale response never overwrites a newer
// row set.
type Controller struct {
	cfg Config
	res Resource
	bus *toast.Bus

	mu         sync.Mutex
	items      []table.Row
	loaded     bool
	loading    bool
	processing bool
	loadSeq    uint64
}

// NewController binds a resource and a notification bus.
func NewController(cfg Config, res Resource, bus *toast.Bus) *Controller {
	if cfg.DefaultOrderBy == "" {
		cfg.DefaultOrderBy = "id"
	}
	return &Controller{cfg: cfg, res: res, bus: bus}
}

// Config returns the controller's descriptors.
func (c *Controller) Config() Config { return c.cfg }

// Items returns the current row set.
func (c *Controller) Items() []table.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Loading reports whether a reload is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Processing reports whether a mutation is in flight; the view
// disables its controls while true.
func (c *Controller) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Reload fetches the row set. Reloads are sequenced: if another reload
// was issued after this one, whatever this one returns is discarded,
// so the last *initiated* request wins rather than the last settled
// response. A failed load keeps the previous rows and emits an error
// note.
func (c *Controller) Reload(ctx context.Context, key string) {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.loading = true
	c.mu.Unlock()

	out := c.res.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		return
	}
	c.loading = false
	c.loaded = true
	if !out.Success {
		c.bus.Emit(key, toast.Note{Message: out.ErrorMessage, Variant: toast.Error})
		return
	}
	c.items = out.Items
}

// EnsureLoaded performs the initial load exactly once.
func (c *Controller) EnsureLoaded(ctx context.Context, key string) {
	c.mu.Lock()
	done := c.loaded || c.loading
	c.mu.Unlock()
	if !done {
		c.Reload(ctx, key)
	}
}

// Item looks an id up in the currently loaded row set.
func (c *Controller) Item(id int) (table.Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range c.items {
		if row.ID == id {
			return row, true
		}
	}
	return table.Row{}, false
}

// begin marks a mutation in flight. A second submission while one is
// processing is refused; the disabled controls are the first line of
// defense, this is the second.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing {
		return false
	}
	c.processing = true
	return true
}

func (c *Controller) end() {
	c.mu.Lock()
	c.processing = false
	c.mu.Unlock()
}

// Add runs the add flow. Returns true when the modal should close.
func (c *Controller) Add(ctx context.Context, key string, values forms.Values) bool {
	if !c.begin() {
		return false
	}
	defer c.end()

	out := c.res.Create(ctx, values)
	if !out.Success {
		c.bus.Emit(key, toast.Note{Message: out.ErrorMessage, Variant: toast.Error})
		return false
	}
	c.Reload(ctx, key)
	c.bus.Emit(key, toast.Note{
		Message: "Successfully added new " + c.cfg.Singular + "!",
		Variant: toast.Success,
	})
	return true
}

// Edit runs the edit flow for one row. If the target vanished from the
// loaded set (deleted concurrently), the modal auto-closes with a
// notification instead of updating stale data.
func (c *Controller) Edit(ctx context.Context, key string, id int, changed forms.Values) bool {
	if _, ok := c.Item(id); !ok {
		c.bus.Emit(key, toast.Note{
			Message: "This " + c.cfg.Singular + " no longer exists.",
			Variant: toast.Warning,
		})
		return true
	}
	if !c.begin() {
		return false
	}
	defer c.end()

	out := c.res.Update(ctx, id, changed)
	if !out.Success {
		c.bus.Emit(key, toast.Note{Message: out.ErrorMessage, Variant: toast.Error})
		return false
	}
	c.Reload(ctx, key)
	c.bus.Emit(key, toast.Note{
		Message: "Successfully edited " + c.cfg.Singular + "!",
		Variant: toast.Success,
	})
	return true
}

// Delete runs the delete-confirm flow for the selected ids. On failure
// the modal stays open and the selection is preserved so the user can
// retry.
func (c *Controller) Delete(ctx context.Context, key string, ids []int) bool {
	if len(ids) == 0 {
		return true
	}
	if !c.begin() {
		return false
	}
	defer c.end()

	out := c.res.DeleteMany(ctx, ids)
	if !out.Success {
		c.bus.Emit(key, toast.Note{Message: out.ErrorMessage, Variant: toast.Error})
		return false
	}
	c.Reload(ctx, key)
	c.bus.Emit(key, toast.Note{
		Message: "Successfully deleted " + countLabel(len(ids), c.cfg.Singular, c.cfg.Plural) + "!",
		Variant: toast.Success,
	})
	return true
}
