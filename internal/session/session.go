// Package session manages cookie-backed login sessions. Session
// tokens are opaque UUIDs; no credential material ever reaches the
// view layer.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the session cookie.
const CookieName = "webparts_session"

// Session binds a token to a logged-in user.
type Session struct {
	Token        string
	UserID       int
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now()
}

// IsExpired reports whether the session exceeded its max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle reports whether the session has been idle past the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	return time.Since(s.LastActiveAt) > timeout
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create starts a session for a user and returns it.
func (m *Manager) Create(userID int) *Session {
	now := time.Now()
	s := &Session{
		Token:        uuid.New().String(),
		UserID:       userID,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s
}

// Get looks a token up, touching the session when found. Expired and
// idle sessions are dropped on access.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
		delete(m.sessions, token)
		return nil, false
	}
	s.Touch()
	return s, true
}

// Delete destroys a session.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Sweep drops every expired or idle session. Run periodically.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for token, s := range m.sessions {
		if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// FromRequest resolves the session for an incoming request.
func (m *Manager) FromRequest(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return m.Get(c.Value)
}

// TokenFromRequest returns the raw cookie token, valid or not. Useful
// as a notification-bus key even before login.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetCookie attaches the session cookie to a response.
func SetCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
