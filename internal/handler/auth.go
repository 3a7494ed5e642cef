package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/modal"
	"github.com/KevinAshley/webparts/internal/session"
	"github.com/KevinAshley/webparts/internal/store"
	"github.com/KevinAshley/webparts/internal/toast"
)

var loginFields = []forms.Field{
	{ID: "email", Label: "Email", Kind: forms.Email, Required: true},
	{ID: "password", Label: "Password", Kind: forms.Password, Required: true},
	{ID: "verify", Label: "I am not a robot", Kind: forms.Checkbox, Required: true},
}

var signupFields = append([]forms.Field{
	{ID: "name", Label: "Name", Kind: forms.Text, Required: true},
}, loginFields...)

var logoutFields = []forms.Field{
	{ID: "name", Label: "Name", Kind: forms.Text, Disabled: true},
	{ID: "email", Label: "Email", Kind: forms.Email, Disabled: true},
	{ID: "log_out", Label: "I want to log out", Kind: forms.Checkbox, Required: true},
}

// authAction points an auth post back at the page it came from, so a
// failure can re-open the same modal in place.
func authAction(r *http.Request, op string) string {
	next := r.URL.Path
	if q := r.URL.Query().Encode(); q != "" {
		next += "?" + q
	}
	return "/auth/" + op + "?next=" + url.QueryEscape(next)
}

// renderAuthModals appends whichever auth modal the query opens. All
// three are uncontrolled: every open starts from fresh values.
func (h *Handler) renderAuthModals(w io.Writer, r *http.Request, user *store.User) error {
	q := r.URL.Query()
	closeURL := closeModalsURL(r)

	if user == nil {
		login := modal.Uncontrolled{
			Title:    "Log In",
			Open:     q.Get("login") == "1",
			Fields:   loginFields,
			Action:   authAction(r, "login"),
			CloseURL: closeURL,
			FormID:   "wp-login-form",
		}
		if err := login.Render(w); err != nil {
			return err
		}
		signup := modal.Uncontrolled{
			Title:    "Sign Up",
			Open:     q.Get("signup") == "1",
			Fields:   signupFields,
			Action:   authAction(r, "signup"),
			CloseURL: closeURL,
			FormID:   "wp-signup-form",
		}
		return signup.Render(w)
	}

	logout := modal.Uncontrolled{
		Title:  "Log Out",
		Open:   q.Get("logout") == "1",
		Fields: logoutFields,
		InitialValues: forms.Values{
			"name":    user.Name,
			"email":   user.Email,
			"log_out": false,
		},
		Action:   authAction(r, "logout"),
		CloseURL: closeURL,
		FormID:   "wp-logout-form",
	}
	return logout.Render(w)
}

// nextURL sanitizes the post-auth redirect target: relative paths
// only.
func nextURL(r *http.Request, fallback string) string {
	next := r.URL.Query().Get("next")
	if next == "" || next[0] != '/' {
		return fallback
	}
	return next
}

// stripModal removes one modal parameter from a relative URL.
func stripModal(rawURL, name string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Del(name)
	u.RawQuery = q.Encode()
	return u.String()
}

// Login authenticates a posted login form and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	eng := forms.NewEngine(loginFields, nil)
	if err := eng.ParseRequest(r); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}
	back := nextURL(r, "/")
	var loginErr error
	eng.Submit(func(values forms.Values) error {
		email, _ := values["email"].(string)
		password, _ := values["password"].(string)
		user, err := h.store.Authenticate(r.Context(), email, password)
		if err != nil {
			loginErr = err
			return nil
		}
		sess := h.sessions.Create(user.ID)
		session.SetCookie(w, sess.Token, h.sessionMaxAge)
		// The toast key changes with the cookie; greet the new
		// session.
		h.bus.Emit(sess.Token, toast.Note{
			Message: "Successfully logged in!",
			Variant: toast.Success,
		})
		return nil
	})
	if loginErr != nil {
		if !errors.Is(loginErr, store.ErrInvalidCredentials) {
			loginErr = store.ErrInvalidCredentials
		}
		h.bus.Emit(key, toast.Note{Message: loginErr.Error(), Variant: toast.Error})
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, stripModal(back, "login"), http.StatusSeeOther)
}

// Signup creates an account and logs it straight in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	eng := forms.NewEngine(signupFields, nil)
	if err := eng.ParseRequest(r); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}
	back := nextURL(r, "/")
	var signupErr error
	eng.Submit(func(values forms.Values) error {
		name, _ := values["name"].(string)
		email, _ := values["email"].(string)
		password, _ := values["password"].(string)
		user, err := h.store.Signup(r.Context(), name, email, password)
		if err != nil {
			signupErr = err
			return nil
		}
		sess := h.sessions.Create(user.ID)
		session.SetCookie(w, sess.Token, h.sessionMaxAge)
		h.bus.Emit(sess.Token, toast.Note{
			Message: "Welcome, " + user.Name + "!",
			Variant: toast.Success,
		})
		return nil
	})
	if signupErr != nil {
		h.bus.Emit(key, toast.Note{Message: signupErr.Error(), Variant: toast.Error})
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, stripModal(back, "signup"), http.StatusSeeOther)
}

// Logout destroys the session. The farewell toast goes to a fresh
// anonymous key, since the old one dies with the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.sessions.FromRequest(r); ok {
		h.sessions.Delete(sess.Token)
		h.bus.Drop(sess.Token)
	}
	anon := uuid.New().String()
	session.SetCookie(w, anon, h.sessionMaxAge)
	h.bus.Emit(anon, toast.Note{
		Message: "Successfully logged out!",
		Variant: toast.Success,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
