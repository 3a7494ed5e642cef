package store

import (
	"context"
	"sync"
	"time"

	"github.com/KevinAshley/webparts/internal/crud"
	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/table"
)

// MemoryResource is an in-memory crud.Resource for demos and tests —
// no SQLite required. It mirrors the todo resource's shape.
type MemoryResource struct {
	mu     sync.Mutex
	nextID int
	items  []table.Row
}

// NewMemoryResource creates an empty in-memory resource.
func NewMemoryResource() *MemoryResource {
	return &MemoryResource{nextID: 1}
}

func (m *MemoryResource) List(_ context.Context) crud.ListOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]table.Row, len(m.items))
	copy(items, m.items)
	return crud.ListOutcome{Outcome: crud.OK(), Items: items}
}

func (m *MemoryResource) Create(_ context.Context, values forms.Values) crud.Outcome {
	name, _ := values["name"].(string)
	if name == "" {
		return crud.Fail("a todo item needs a name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	m.items = append(m.items, table.Row{
		ID: m.nextID,
		Cells: map[string]any{
			"id":        m.nextID,
			"name":      name,
			"completed": forms.Truthy(values["completed"]),
			"createdAt": now,
			"updatedAt": now,
		},
	})
	m.nextID++
	return crud.OK()
}

func (m *MemoryResource) Update(_ context.Context, id int, changed forms.Values) crud.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.items {
		if row.ID != id {
			continue
		}
		cells := make(map[string]any, len(row.Cells))
		for k, v := range row.Cells {
			cells[k] = v
		}
		for key, value := range changed {
			switch key {
			case "name":
				name, _ := value.(string)
				if name == "" {
					return crud.Fail("a todo item needs a name")
				}
				cells["name"] = name
			case "completed":
				cells["completed"] = forms.Truthy(value)
			default:
				return crud.Fail("unknown todo item field %q", key)
			}
		}
		cells["updatedAt"] = time.Now().UTC()
		m.items[i] = table.Row{ID: id, Cells: cells}
		return crud.OK()
	}
	return crud.Fail("forbidden to edit this todo item")
}

func (m *MemoryResource) DeleteMany(_ context.Context, ids []int) crud.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	keep := m.items[:0]
	removed := 0
	for _, row := range m.items {
		if containsID(ids, row.ID) {
			removed++
			continue
		}
		keep = append(keep, row)
	}
	m.items = keep
	if removed == 0 {
		return crud.Fail("forbidden to delete these todo items")
	}
	return crud.OK()
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

var _ crud.Resource = (*MemoryResource)(nil)
