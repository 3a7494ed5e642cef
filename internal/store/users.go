package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"golang.org/x/crypto/bcrypt"

	"github.com/KevinAshley/webparts/internal/crud"
	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/table"
)

// User is an account record. The password hash never leaves this
// package; the view layer only ever sees the public fields.
type User struct {
	ID        int
	Name      string
	Email     string
	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time

	passwordHash string
}

// ErrInvalidCredentials is returned for a bad email/password pair.
// One error for both cases, so login failures don't reveal which
// part was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

var userColumns = []string{"id", "name", "email", "password", "admin", "created_at", "updated_at"}

func scanUser(rows *sql.Rows) (User, error) {
	var u User
	err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.passwordHash, &u.Admin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) queryUsers(ctx context.Context, sel *entsql.Selector) ([]User, error) {
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserByID fetches one user.
func (s *Store) UserByID(ctx context.Context, id int) (User, error) {
	users, err := s.queryUsers(ctx, builder().
		Select(userColumns...).
		From(entsql.Table("users")).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, sql.ErrNoRows
	}
	return users[0], nil
}

// Signup creates an account with a bcrypt-hashed password and returns
// the new user.
func (s *Store) Signup(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return User{}, errors.New("name, email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}
	now := time.Now().UTC()
	query, args := builder().
		Insert("users").
		Columns("name", "email", "password", "admin", "created_at", "updated_at").
		Values(name, email, string(hash), false, now, now).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, errors.New("an account with this email already exists")
		}
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return s.UserByID(ctx, int(id))
}

func (s *Store) setAdmin(ctx context.Context, id int, admin bool) error {
	query, args := builder().
		Update("users").
		Set("admin", admin).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// Authenticate checks an email/password pair.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := s.queryUsers(ctx, builder().
		Select(userColumns...).
		From(entsql.Table("users")).
		Where(entsql.EQ("email", email)))
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, ErrInvalidCredentials
	}
	u := users[0]
	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// UserResource is the admin-only users table collaborator.
type UserResource struct {
	store *Store
	// actorIsAdmin gates every mutation server-side.
	actorIsAdmin bool
	actorID      int
}

// Users returns the users resource acting as the given user.
func (s *Store) Users(actor User) *UserResource {
	return &UserResource{store: s, actorIsAdmin: actor.Admin, actorID: actor.ID}
}

// List returns all accounts as table rows. Password hashes stay out of
// the cells.
func (r *UserResource) List(ctx context.Context) crud.ListOutcome {
	if !r.actorIsAdmin {
		return crud.ListOutcome{Outcome: crud.Fail("forbidden: only admins can list users")}
	}
	users, err := r.store.queryUsers(ctx, builder().
		Select(userColumns...).
		From(entsql.Table("users")).
		OrderBy("id"))
	if err != nil {
		return crud.ListOutcome{Outcome: crud.Fail("listing users: %v", err)}
	}
	items := make([]table.Row, len(users))
	for i, u := range users {
		items[i] = table.Row{
			ID: u.ID,
			Cells: map[string]any{
				"id":        u.ID,
				"name":      u.Name,
				"email":     u.Email,
				"admin":     u.Admin,
				"createdAt": u.CreatedAt,
			},
		}
	}
	return crud.ListOutcome{Outcome: crud.OK(), Items: items}
}

// Create adds an account on an admin's behalf.
func (r *UserResource) Create(ctx context.Context, values forms.Values) crud.Outcome {
	if !r.actorIsAdmin {
		return crud.Fail("forbidden: only admins can add users")
	}
	name, _ := values["name"].(string)
	email, _ := values["email"].(string)
	password, _ := values["password"].(string)
	u, err := r.store.Signup(ctx, name, email, password)
	if err != nil {
		return crud.Fail("%v", err)
	}
	if forms.Truthy(values["admin"]) {
		return r.Update(ctx, u.ID, forms.Values{"admin": true})
	}
	return crud.OK()
}

// Update applies changed fields to an account.
func (r *UserResource) Update(ctx context.Context, id int, changed forms.Values) crud.Outcome {
	if !r.actorIsAdmin {
		return crud.Fail("forbidden: only admins can edit users")
	}
	if len(changed) == 0 {
		return crud.OK()
	}
	ub := builder().Update("users")
	for key, value := range changed {
		switch key {
		case "name":
			name, _ := value.(string)
			if name == "" {
				return crud.Fail("a user needs a name")
			}
			ub.Set("name", name)
		case "email":
			email, _ := value.(string)
			if email == "" {
				return crud.Fail("a user needs an email")
			}
			ub.Set("email", strings.ToLower(strings.TrimSpace(email)))
		case "password":
			password, _ := value.(string)
			if password == "" {
				// Blank means unchanged in the edit form.
				continue
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return crud.Fail("hashing password: %v", err)
			}
			ub.Set("password", string(hash))
		case "admin":
			ub.Set("admin", forms.Truthy(value))
		default:
			return crud.Fail("unknown user field %q", key)
		}
	}
	ub.Set("updated_at", time.Now().UTC()).Where(entsql.EQ("id", id))
	query, args := ub.Query()
	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return crud.Fail("an account with this email already exists")
		}
		return crud.Fail("editing user: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crud.Fail("user not found")
	}
	return crud.OK()
}

// DeleteMany removes accounts. The acting admin cannot delete their
// own account along the way.
func (r *UserResource) DeleteMany(ctx context.Context, ids []int) crud.Outcome {
	if !r.actorIsAdmin {
		return crud.Fail("forbidden: only admins can delete users")
	}
	anyIDs := make([]any, 0, len(ids))
	for _, id := range ids {
		if id == r.actorID {
			return crud.Fail("you cannot delete your own account")
		}
		anyIDs = append(anyIDs, id)
	}
	if len(anyIDs) == 0 {
		return crud.OK()
	}
	query, args := builder().
		Delete("users").
		Where(entsql.In("id", anyIDs...)).
		Query()
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return crud.Fail("deleting users: %v", err)
	}
	return crud.OK()
}

var _ crud.Resource = (*UserResource)(nil)
