// Package handler implements the HTTP surface: server-rendered pages
// composed from the shared components, the form-post endpoints behind
// them, a small JSON API, and the toast WebSocket.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KevinAshley/webparts/internal/crud"
	"github.com/KevinAshley/webparts/internal/resource"
	"github.com/KevinAshley/webparts/internal/session"
	"github.com/KevinAshley/webparts/internal/store"
	"github.com/KevinAshley/webparts/internal/toast"
	"github.com/KevinAshley/webparts/internal/verify"
)

// Handler holds every collaborator the pages need.
type Handler struct {
	store    *store.Store
	sessions *session.Manager
	bus      *toast.Bus
	verifier verify.Verifier
	defs     map[string]resource.Definition

	siteName      string
	siteKey       string
	theme         string
	sessionMaxAge time.Duration
}

// Config wires a Handler.
type Config struct {
	Store         *store.Store
	Sessions      *session.Manager
	Bus           *toast.Bus
	Verifier      verify.Verifier
	Definitions   map[string]resource.Definition
	SiteName      string
	SiteKey       string
	Theme         string
	SessionMaxAge time.Duration
}

// New creates the handler.
func New(cfg Config) *Handler {
	return &Handler{
		store:         cfg.Store,
		sessions:      cfg.Sessions,
		bus:           cfg.Bus,
		verifier:      cfg.Verifier,
		defs:          cfg.Definitions,
		siteName:      cfg.SiteName,
		siteKey:       cfg.SiteKey,
		theme:         cfg.Theme,
		sessionMaxAge: cfg.SessionMaxAge,
	}
}

// Routes registers every route on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", h.HomePage)

	r.Get("/todos", h.TodosPage)
	r.Post("/todos/add", h.TodoAdd)
	r.Post("/todos/edit/{id}", h.TodoEdit)
	r.Post("/todos/delete", h.TodoDelete)

	r.Get("/users", h.UsersPage)
	r.Post("/users/add", h.UserAdd)
	r.Post("/users/edit/{id}", h.UserEdit)
	r.Post("/users/delete", h.UserDelete)

	r.Get("/contact", h.ContactPage)
	r.Post("/contact", h.ContactSend)

	r.Post("/auth/login", h.Login)
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/logout", h.Logout)

	r.Get("/api/todos", h.TodosJSON)

	r.Get("/ws/toasts", toast.NewWireHandler(h.bus, session.TokenFromRequest).ServeHTTP)

	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))
}

// currentUser resolves the logged-in user, if any.
func (h *Handler) currentUser(r *http.Request) (store.User, bool) {
	sess, ok := h.sessions.FromRequest(r)
	if !ok {
		return store.User{}, false
	}
	u, err := h.store.UserByID(r.Context(), sess.UserID)
	if err != nil {
		return store.User{}, false
	}
	return u, true
}

// busKey returns the notification-bus key for this visitor, minting a
// cookie for anonymous visitors so pre-login toasts (failed logins,
// contact form errors) have somewhere to go.
func (h *Handler) busKey(w http.ResponseWriter, r *http.Request) string {
	if token := session.TokenFromRequest(r); token != "" {
		return token
	}
	token := uuid.New().String()
	session.SetCookie(w, token, h.sessionMaxAge)
	return token
}

// todoController binds the todo resource for one user. Controllers are
// cheap request-scoped compositions; the PRG flow makes every page GET
// a fresh list load.
func (h *Handler) todoController(userID int) *crud.Controller {
	def := h.defs["todo"]
	return crud.NewController(crud.Config{
		Heading:        def.Heading,
		Singular:       def.Singular,
		Plural:         def.Plural,
		Columns:        def.TableColumns(),
		Fields:         def.FormFields(),
		DefaultOrderBy: def.DefaultOrderBy,
		BaseURL:        "/todos",
		SiteKey:        h.siteKey,
	}, h.store.Todos(userID), h.bus)
}

func (h *Handler) userController(actor store.User) *crud.Controller {
	def := h.defs["user"]
	return crud.NewController(crud.Config{
		Heading:        def.Heading,
		Singular:       def.Singular,
		Plural:         def.Plural,
		Columns:        def.TableColumns(),
		Fields:         def.FormFields(),
		DefaultOrderBy: def.DefaultOrderBy,
		BaseURL:        "/users",
		SiteKey:        h.siteKey,
	}, h.store.Users(actor), h.bus)
}
