package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/KevinAshley/webparts/internal/crud"
	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/table"
)

// todoColumns is the shape handed to the table: descriptor ids match
// cell keys.
var todoColumns = []string{"id", "name", "completed", "created_at", "updated_at"}

// TodoResource is the todo-item CRUD collaborator bound to one user.
// Ownership is enforced in every statement — the view-layer gate is
// not the security boundary.
type TodoResource struct {
	store  *Store
	userID int
}

// Todos returns the todo resource scoped to a user.
func (s *Store) Todos(userID int) *TodoResource {
	return &TodoResource{store: s, userID: userID}
}

// List returns the user's todo items as table rows.
func (r *TodoResource) List(ctx context.Context) crud.ListOutcome {
	query, args := builder().
		Select(todoColumns...).
		From(entsql.Table("todo_items")).
		Where(entsql.EQ("user_id", r.userID)).
		OrderBy("id").
		Query()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return crud.ListOutcome{Outcome: crud.Fail("listing todo items: %v", err)}
	}
	defer rows.Close()

	var items []table.Row
	for rows.Next() {
		var (
			id                   int
			name                 string
			completed            bool
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &name, &completed, &createdAt, &updatedAt); err != nil {
			return crud.ListOutcome{Outcome: crud.Fail("scanning todo item: %v", err)}
		}
		items = append(items, table.Row{
			ID: id,
			Cells: map[string]any{
				"id":        id,
				"name":      name,
				"completed": completed,
				"createdAt": createdAt,
				"updatedAt": updatedAt,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return crud.ListOutcome{Outcome: crud.Fail("listing todo items: %v", err)}
	}
	return crud.ListOutcome{Outcome: crud.OK(), Items: items}
}

// Create inserts a new todo item for the user.
func (r *TodoResource) Create(ctx context.Context, values forms.Values) crud.Outcome {
	name, _ := values["name"].(string)
	if name == "" {
		return crud.Fail("a todo item needs a name")
	}
	now := time.Now().UTC()
	query, args := builder().
		Insert("todo_items").
		Columns("name", "completed", "user_id", "created_at", "updated_at").
		Values(name, forms.Truthy(values["completed"]), r.userID, now, now).
		Query()
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return crud.Fail("adding todo item: %v", err)
	}
	return crud.OK()
}

// Update applies the changed values to one of the user's items. An id
// belonging to someone else matches no row and is reported as a
// failure, not silently ignored.
func (r *TodoResource) Update(ctx context.Context, id int, changed forms.Values) crud.Outcome {
	if len(changed) == 0 {
		return crud.OK()
	}
	ub := builder().Update("todo_items")
	for key, value := range changed {
		switch key {
		case "name":
			name, _ := value.(string)
			if name == "" {
				return crud.Fail("a todo item needs a name")
			}
			ub.Set("name", name)
		case "completed":
			ub.Set("completed", forms.Truthy(value))
		default:
			return crud.Fail("unknown todo item field %q", key)
		}
	}
	ub.Set("updated_at", time.Now().UTC()).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", r.userID)))

	query, args := ub.Query()
	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return crud.Fail("editing todo item: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crud.Fail("forbidden to edit this todo item")
	}
	return crud.OK()
}

// DeleteMany removes the user's selected items in one statement.
func (r *TodoResource) DeleteMany(ctx context.Context, ids []int) crud.Outcome {
	if len(ids) == 0 {
		return crud.OK()
	}
	anyIDs := make([]any, len(ids))
	for i, id := range ids {
		anyIDs[i] = id
	}
	query, args := builder().
		Delete("todo_items").
		Where(entsql.And(entsql.In("id", anyIDs...), entsql.EQ("user_id", r.userID))).
		Query()
	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return crud.Fail("deleting todo items: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crud.Fail("forbidden to delete these todo items")
	}
	return crud.OK()
}

var _ crud.Resource = (*TodoResource)(nil)
