package store

import (
	"context"
	"fmt"
	"time"

	"github.com/KevinAshley/webparts/internal/forms"
)

// SaveContactMessage persists one submission of the contact form. The
// verification token is checked by the handler before this is called
// and is not stored.
func (s *Store) SaveContactMessage(ctx context.Context, values forms.Values) error {
	name, _ := values["name"].(string)
	email, _ := values["email"].(string)
	message, _ := values["message"].(string)
	if name == "" || email == "" || message == "" {
		return fmt.Errorf("name, email and message are required")
	}
	query, args := builder().
		Insert("contact_messages").
		Columns("name", "email", "message", "created_at").
		Values(name, email, message, time.Now().UTC()).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving contact message: %w", err)
	}
	return nil
}
