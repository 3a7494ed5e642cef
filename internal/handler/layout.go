package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/KevinAshley/webparts/internal/store"
	"github.com/KevinAshley/webparts/internal/toast"
)

//go:embed templates/*
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var (
	layoutTmpl = template.Must(template.ParseFS(templateFS, "templates/layout.html"))
	homeTmpl   = template.Must(template.ParseFS(templateFS, "templates/home.html"))
)

type navLink struct {
	Label  string
	Path   string
	Active bool
}

type layoutData struct {
	SiteName  string
	Title     string
	Theme     string
	Nav       []navLink
	User      *store.User
	LoginURL  string
	SignupURL string
	LogoutURL string
	Toast     *toast.Note
	Body      template.HTML
	Year      int
}

// navFor builds the header navigation. The users page only appears for
// admins.
func (h *Handler) navFor(u *store.User, current string) []navLink {
	links := []navLink{
		{Label: "Home", Path: "/"},
		{Label: "Todo List", Path: "/todos"},
		{Label: "Contact", Path: "/contact"},
	}
	if u != nil && u.Admin {
		links = append(links, navLink{Label: "Users List", Path: "/users"})
	}
	for i := range links {
		links[i].Active = links[i].Path == current
	}
	return links
}

// modalURL re-targets the current page URL at an auth modal.
func modalURL(r *http.Request, name string) string {
	q := url.Values{}
	for k, vs := range r.URL.Query() {
		switch k {
		case "login", "signup", "logout":
			// Only one auth modal at a time.
		default:
			q[k] = vs
		}
	}
	q.Set(name, "1")
	return r.URL.Path + "?" + q.Encode()
}

// renderPage wraps a body in the page chrome: header with navigation
// and the login/logout entry points, the one-at-a-time toast slot, the
// auth modals, and the footer.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, key, title string, body template.HTML) {
	user, authed := h.currentUser(r)
	var userPtr *store.User
	if authed {
		userPtr = &user
	}

	var buf bytes.Buffer
	buf.Write([]byte(body))
	if err := h.renderAuthModals(&buf, r, userPtr); err != nil {
		log.Printf("rendering auth modals: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := layoutData{
		SiteName:  h.siteName,
		Title:     title,
		Theme:     h.theme,
		Nav:       h.navFor(userPtr, r.URL.Path),
		User:      userPtr,
		LoginURL:  modalURL(r, "login"),
		SignupURL: modalURL(r, "signup"),
		LogoutURL: modalURL(r, "logout"),
		Body:      template.HTML(buf.String()),
		Year:      time.Now().Year(),
	}
	if n, ok := h.bus.Next(key); ok {
		data.Toast = &n
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layoutTmpl.Execute(w, data); err != nil {
		log.Printf("rendering layout: %v", err)
	}
}

// closeModalsURL strips every modal parameter from the current URL,
// keeping table state intact.
func closeModalsURL(r *http.Request) string {
	q := url.Values{}
	for k, vs := range r.URL.Query() {
		switch k {
		case "login", "signup", "logout", "add", "edit", "delete":
		default:
			q[k] = vs
		}
	}
	if enc := q.Encode(); enc != "" {
		return r.URL.Path + "?" + enc
	}
	return r.URL.Path
}
