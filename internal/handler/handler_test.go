package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/KevinAshley/webparts/internal/resource"
	"github.com/KevinAshley/webparts/internal/session"
	"github.com/KevinAshley/webparts/internal/store"
	"github.com/KevinAshley/webparts/internal/toast"
	"github.com/KevinAshley/webparts/internal/verify"
)

type fixture struct {
	store    *store.Store
	sessions *session.Manager
	bus      *toast.Bus
	router   *chi.Mux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Bootstrap(ctx))

	sessions := session.NewManager(time.Hour, time.Hour)
	bus := toast.NewBus()
	h := New(Config{
		Store:         st,
		Sessions:      sessions,
		Bus:           bus,
		Verifier:      verify.Static(true),
		Definitions:   resource.MustLoad(),
		SiteName:      "webparts",
		Theme:         "light",
		SessionMaxAge: time.Hour,
	})

	r := chi.NewRouter()
	h.Routes(r)
	return &fixture{store: st, sessions: sessions, bus: bus, router: r}
}

// login signs a user up through the store and returns their session
// cookie.
func (f *fixture) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	u, err := f.store.Signup(context.Background(), "Test User", email, "pw")
	require.NoError(t, err)
	s := f.sessions.Create(u.ID)
	return &http.Cookie{Name: session.CookieName, Value: s.Token}
}

func (f *fixture) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) post(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHomePage(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "webparts")
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestTodosPage_AnonymousSeesFallback(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/todos", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Login Required")
	assert.Contains(t, body, "Log In")
}

func TestTodosPage_AuthenticatedSeesTable(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "alice@example.com")

	w := f.get(t, "/todos", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Todo List")
	assert.NotContains(t, body, "Login Required")
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Signup(context.Background(), "Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	w := f.post(t, "/auth/login?next="+url.QueryEscape("/todos?login=1"), url.Values{
		"email":    {"alice@example.com"},
		"password": {"hunter22"},
		"verify":   {"on"},
	}, nil)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/todos", w.Header().Get("Location"), "login modal param stripped")

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	// The new session greets the user.
	n, ok := f.bus.Next(sessionCookie.Value)
	require.True(t, ok)
	assert.Equal(t, "Successfully logged in!", n.Message)
}

func TestLoginFlow_BadPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Signup(context.Background(), "Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	anon := &http.Cookie{Name: session.CookieName, Value: "anon-key"}
	w := f.post(t, "/auth/login?next="+url.QueryEscape("/todos?login=1"), url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong"},
	}, anon)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/todos?login=1", w.Header().Get("Location"), "modal stays open on failure")

	n, ok := f.bus.Next("anon-key")
	require.True(t, ok)
	assert.Equal(t, toast.Error, n.Variant)
	assert.Equal(t, "invalid email or password", n.Message)
}

func TestSignupFlow_AutoLogin(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/auth/signup?next=%2F", url.Values{
		"name":     {"New User"},
		"email":    {"new@example.com"},
		"password": {"pw"},
		"verify":   {"on"},
	}, nil)

	require.Equal(t, http.StatusSeeOther, w.Code)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	n, ok := f.bus.Next(sessionCookie.Value)
	require.True(t, ok)
	assert.Equal(t, "Welcome, New User!", n.Message)
}

func TestTodoAddFlow(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "alice@example.com")

	w := f.post(t, "/todos/add?add=1", url.Values{
		"name":      {"milk"},
		"__initial": {`{"name":"","completed":false}`},
	}, cookie)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/todos", w.Header().Get("Location"), "add modal closes on success")

	n, ok := f.bus.Next(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, "Successfully added new todo item!", n.Message)

	page := f.get(t, "/todos", cookie)
	assert.Contains(t, page.Body.String(), "milk")
}

func TestTodoAddFlow_HoneypotNoOp(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "alice@example.com")

	w := f.post(t, "/todos/add?add=1", url.Values{
		"name":      {"spam entry"},
		"hp_robots": {"on"},
	}, cookie)

	// Bots get the same redirect as a success, and nothing happens.
	require.Equal(t, http.StatusSeeOther, w.Code)
	page := f.get(t, "/todos", cookie)
	assert.NotContains(t, page.Body.String(), "spam entry")
	_, ok := f.bus.Next(cookie.Value)
	assert.False(t, ok, "no toast for a honeypot submission")
}

func TestTodoEditAndDeleteFlow(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "alice@example.com")

	require.Equal(t, http.StatusSeeOther, f.post(t, "/todos/add?add=1", url.Values{
		"name": {"milk"},
	}, cookie).Code)

	page := f.get(t, "/todos", cookie)
	require.Contains(t, page.Body.String(), "milk")

	// The first row gets id 1 in a fresh database.
	w := f.post(t, "/todos/edit/1?edit=1", url.Values{
		"name":      {"oat milk"},
		"__initial": {`{"name":"milk","completed":false}`},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	page = f.get(t, "/todos", cookie)
	assert.Contains(t, page.Body.String(), "oat milk")

	w = f.post(t, "/todos/delete?delete=1&selected=1", url.Values{
		"confirmation": {"on"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/todos", w.Header().Get("Location"), "selection cleared after delete")

	page = f.get(t, "/todos", cookie)
	assert.NotContains(t, page.Body.String(), "oat milk")
}

func TestUsersPage_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "plain@example.com")

	w := f.get(t, "/users", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Login Required", "non-admins get the fallback")
}

func TestContactFlow(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/contact", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wp-verification")

	post := f.post(t, "/contact", url.Values{
		"name":    {"Visitor"},
		"email":   {"v@example.com"},
		"message": {"Hello"},
		"verify":  {"challenge-token"},
	}, &http.Cookie{Name: session.CookieName, Value: "anon-key"})
	require.Equal(t, http.StatusSeeOther, post.Code)

	n, ok := f.bus.Next("anon-key")
	require.True(t, ok)
	assert.Equal(t, "Your message has been sent!", n.Message)
}

func TestContactFlow_MissingToken(t *testing.T) {
	f := newFixture(t)

	post := f.post(t, "/contact", url.Values{
		"name":    {"Visitor"},
		"email":   {"v@example.com"},
		"message": {"Hello"},
	}, &http.Cookie{Name: session.CookieName, Value: "anon-key"})

	// Failure re-renders inline with the input intact and the error
	// toast already in the page's slot.
	require.Equal(t, http.StatusOK, post.Code)
	assert.Contains(t, post.Body.String(), "Visitor")
	assert.Contains(t, post.Body.String(), "Verification failed")

	_, ok := f.bus.Next("anon-key")
	assert.False(t, ok, "note was rendered, not left queued")
}

func TestTodosJSON(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/api/todos", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookie := f.login(t, "alice@example.com")
	require.Equal(t, http.StatusSeeOther, f.post(t, "/todos/add", url.Values{
		"name": {"milk"},
	}, cookie).Code)

	w = f.get(t, "/api/todos", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "milk")
}
