package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/table"
	"github.com/KevinAshley/webparts/internal/toast"
)

// fakeResource is an in-memory Resource with scriptable failures.
type fakeResource struct {
	nextID   int
	items    []table.Row
	failList bool
	failNext string
}

func newFakeResource(names ...string) *fakeResource {
	r := &fakeResource{}
	for _, name := range names {
		r.nextID++
		r.items = append(r.items, table.Row{
			ID:    r.nextID,
			Cells: map[string]any{"id": r.nextID, "name": name},
		})
	}
	return r
}

func (r *fakeResource) List(context.Context) ListOutcome {
	if r.failList {
		return ListOutcome{Outcome: Fail("list blew up")}
	}
	items := make([]table.Row, len(r.items))
	copy(items, r.items)
	return ListOutcome{Outcome: OK(), Items: items}
}

func (r *fakeResource) Create(_ context.Context, values forms.Values) Outcome {
	if r.failNext != "" {
		return Fail("%s", r.failNext)
	}
	r.nextID++
	name, _ := values["name"].(string)
	r.items = append(r.items, table.Row{
		ID:    r.nextID,
		Cells: map[string]any{"id": r.nextID, "name": name},
	})
	return OK()
}

func (r *fakeResource) Update(_ context.Context, id int, changed forms.Values) Outcome {
	if r.failNext != "" {
		return Fail("%s", r.failNext)
	}
	for i := range r.items {
		if r.items[i].ID == id {
			for k, v := range changed {
				r.items[i].Cells[k] = v
			}
			return OK()
		}
	}
	return Fail("no such item")
}

func (r *fakeResource) DeleteMany(_ context.Context, ids []int) Outcome {
	if r.failNext != "" {
		return Fail("%s", r.failNext)
	}
	keep := r.items[:0]
	for _, item := range r.items {
		drop := false
		for _, id := range ids {
			if item.ID == id {
				drop = true
			}
		}
		if !drop {
			keep = append(keep, item)
		}
	}
	r.items = keep
	return OK()
}

// blockingResource parks every List call until the test releases it,
// so overlapping reloads can be settled in a chosen order.
type blockingResource struct {
	calls chan chan ListOutcome
}

func (r *blockingResource) List(context.Context) ListOutcome {
	reply := make(chan ListOutcome)
	r.calls <- reply
	return <-reply
}

func (r *blockingResource) Create(context.Context, forms.Values) Outcome {
	return Fail("not supported")
}

func (r *blockingResource) Update(context.Context, int, forms.Values) Outcome {
	return Fail("not supported")
}

func (r *blockingResource) DeleteMany(context.Context, []int) Outcome {
	return Fail("not supported")
}

func testController(res Resource) (*Controller, *toast.Bus) {
	bus := toast.NewBus()
	ctl := NewController(Config{
		Heading:  "Todo List",
		Singular: "todo item",
		Plural:   "todo items",
		Columns: []table.Column{
			{ID: "id", Label: "ID", Type: table.NumberColumn},
			{ID: "name", Label: "Name", Type: table.TextColumn},
		},
		Fields: []forms.Field{
			{ID: "name", Label: "Name", Kind: forms.Text, Required: true},
		},
		BaseURL: "/todos",
	}, res, bus)
	return ctl, bus
}

func lastNote(t *testing.T, bus *toast.Bus, key string) toast.Note {
	t.Helper()
	var last toast.Note
	found := false
	for {
		n, ok := bus.Next(key)
		if !ok {
			break
		}
		last = n
		found = true
	}
	require.True(t, found, "expected at least one note")
	return last
}

func TestController_EnsureLoadedLoadsOnce(t *testing.T) {
	res := newFakeResource("one", "two")
	ctl, _ := testController(res)
	ctx := context.Background()

	ctl.EnsureLoaded(ctx, "s1")
	require.Len(t, ctl.Items(), 2)

	res.items = nil
	ctl.EnsureLoaded(ctx, "s1")
	assert.Len(t, ctl.Items(), 2, "second EnsureLoaded must not refetch")
}

func TestController_AddSuccessClosesAndToasts(t *testing.T) {
	ctl, bus := testController(newFakeResource())
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	closed := ctl.Add(ctx, "s1", forms.Values{"name": "milk"})
	assert.True(t, closed)
	assert.Len(t, ctl.Items(), 1)

	n := lastNote(t, bus, "s1")
	assert.Equal(t, "Successfully added new todo item!", n.Message)
	assert.Equal(t, toast.Success, n.Variant)
}

func TestController_AddFailureKeepsModalOpen(t *testing.T) {
	res := newFakeResource()
	res.failNext = "a todo item needs a name"
	ctl, bus := testController(res)
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	closed := ctl.Add(ctx, "s1", forms.Values{"name": ""})
	assert.False(t, closed)
	assert.Empty(t, ctl.Items())

	n := lastNote(t, bus, "s1")
	assert.Equal(t, "a todo item needs a name", n.Message)
	assert.Equal(t, toast.Error, n.Variant)
}

func TestController_EditSuccess(t *testing.T) {
	ctl, bus := testController(newFakeResource("milk"))
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	closed := ctl.Edit(ctx, "s1", 1, forms.Values{"name": "bread"})
	assert.True(t, closed)

	row, ok := ctl.Item(1)
	require.True(t, ok)
	assert.Equal(t, "bread", row.Cells["name"])
	assert.Equal(t, "Successfully edited todo item!", lastNote(t, bus, "s1").Message)
}

func TestController_EditVanishedTargetClosesWithWarning(t *testing.T) {
	ctl, bus := testController(newFakeResource("milk"))
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	closed := ctl.Edit(ctx, "s1", 999, forms.Values{"name": "bread"})
	assert.True(t, closed, "editing a vanished row closes the modal")

	n := lastNote(t, bus, "s1")
	assert.Equal(t, toast.Warning, n.Variant)
	assert.Equal(t, "This todo item no longer exists.", n.Message)
}

func TestController_DeleteCountsSingularAndPlural(t *testing.T) {
	ctl, bus := testController(newFakeResource("a", "b", "c"))
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	require.True(t, ctl.Delete(ctx, "s1", []int{1}))
	assert.Equal(t, "Successfully deleted 1 todo item!", lastNote(t, bus, "s1").Message)

	require.True(t, ctl.Delete(ctx, "s1", []int{2, 3}))
	assert.Equal(t, "Successfully deleted 2 todo items!", lastNote(t, bus, "s1").Message)
	assert.Empty(t, ctl.Items())
}

func TestController_DeleteNothingSelectedIsANoOp(t *testing.T) {
	ctl, bus := testController(newFakeResource("a"))
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	assert.True(t, ctl.Delete(ctx, "s1", nil))
	assert.Len(t, ctl.Items(), 1)
	_, ok := bus.Next("s1")
	assert.False(t, ok, "no toast for an empty selection")
}

func TestController_FailedReloadKeepsPreviousRows(t *testing.T) {
	res := newFakeResource("milk")
	ctl, bus := testController(res)
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	res.failList = true
	ctl.Reload(ctx, "s1")

	assert.Len(t, ctl.Items(), 1, "failed reload keeps the old rows")
	n := lastNote(t, bus, "s1")
	assert.Equal(t, toast.Error, n.Variant)
	assert.Equal(t, "list blew up", n.Message)
}

func TestController_DeleteFailureKeepsRowsAndModalOpen(t *testing.T) {
	res := newFakeResource("a", "b", "c")
	res.failNext = "database is unavailable"
	ctl, bus := testController(res)
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	closed := ctl.Delete(ctx, "s1", []int{1, 2})
	assert.False(t, closed, "failed delete keeps the confirm modal open")
	assert.Len(t, ctl.Items(), 3, "no rows lost on a failed delete")

	n := lastNote(t, bus, "s1")
	assert.Equal(t, toast.Error, n.Variant)
	assert.Equal(t, "database is unavailable", n.Message)
}

func TestController_StaleReloadDiscarded(t *testing.T) {
	res := &blockingResource{calls: make(chan chan ListOutcome, 2)}
	ctl, _ := testController(res)
	ctx := context.Background()

	firstDone := make(chan struct{})
	go func() {
		ctl.Reload(ctx, "s1")
		close(firstDone)
	}()
	firstReply := <-res.calls

	secondDone := make(chan struct{})
	go func() {
		ctl.Reload(ctx, "s1")
		close(secondDone)
	}()
	secondReply := <-res.calls

	// The later reload settles first and wins.
	secondReply <- ListOutcome{Outcome: OK(), Items: []table.Row{
		{ID: 1, Cells: map[string]any{"name": "fresh"}},
	}}
	<-secondDone

	// The superseded reload settles afterwards; its rows must be
	// discarded.
	firstReply <- ListOutcome{Outcome: OK(), Items: []table.Row{
		{ID: 9, Cells: map[string]any{"name": "stale"}},
	}}
	<-firstDone

	rows := ctl.Items()
	require.Len(t, rows, 1)
	assert.Equal(t, "fresh", rows[0].Cells["name"])
	assert.False(t, ctl.Loading())
}

func TestController_MutationsRefuseWhileProcessing(t *testing.T) {
	ctl, _ := testController(newFakeResource("milk"))
	ctx := context.Background()
	ctl.EnsureLoaded(ctx, "s1")

	ctl.mu.Lock()
	ctl.processing = true
	ctl.mu.Unlock()

	assert.False(t, ctl.Add(ctx, "s1", forms.Values{"name": "x"}))
	assert.False(t, ctl.Edit(ctx, "s1", 1, forms.Values{"name": "x"}))
	assert.False(t, ctl.Delete(ctx, "s1", []int{1}))
	assert.Len(t, ctl.Items(), 1)
}
