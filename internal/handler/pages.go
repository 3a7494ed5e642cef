package handler

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/KevinAshley/webparts/internal/crud"
	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/toast"
)

// HomePage renders the landing page.
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	var buf bytes.Buffer
	if err := homeTmpl.Execute(&buf, map[string]any{
		"SiteName": h.siteName,
	}); err != nil {
		log.Printf("rendering home: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.renderPage(w, r, key, h.siteName, template.HTML(buf.String()))
}

// crudPage renders one data-table-with-modals page.
func (h *Handler) crudPage(w http.ResponseWriter, r *http.Request, key string, ctl *crud.Controller, authed bool, opt crud.RenderOptions) {
	def := ctl.Config()
	vs := crud.ParseViewState(r.URL.Query(), def.DefaultOrderBy)

	if authed {
		ctl.EnsureLoaded(r.Context(), key)
		// A stale edit link (the row was deleted meanwhile) closes
		// itself with a notification instead of opening on nothing.
		if vs.EditingID > 0 {
			if _, ok := ctl.Item(vs.EditingID); !ok {
				h.bus.Emit(key, toast.Note{
					Message: "This " + def.Singular + " no longer exists.",
					Variant: toast.Warning,
				})
				vs.EditingID = 0
			}
		}
	}

	opt.Authenticated = authed
	opt.LoginURL = modalURL(r, "login")
	opt.SignupURL = modalURL(r, "signup")

	var buf bytes.Buffer
	if err := ctl.Render(&buf, vs, opt); err != nil {
		log.Printf("rendering %s: %v", def.Heading, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.renderPage(w, r, key, def.Heading, template.HTML(buf.String()))
}

// TodosPage is the todo-list table.
func (h *Handler) TodosPage(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	user, authed := h.currentUser(r)
	h.crudPage(w, r, key, h.todoController(user.ID), authed, crud.RenderOptions{})
}

// UsersPage is the admin accounts table.
func (h *Handler) UsersPage(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	user, authed := h.currentUser(r)
	h.crudPage(w, r, key, h.userController(user), authed && user.Admin, crud.RenderOptions{})
}

// mutate runs one modal submission through a controller: parse, bot
// check, dispatch, then either redirect with the modal closed or
// re-render the page with the modal open and the input intact.
func (h *Handler) mutate(
	w http.ResponseWriter, r *http.Request,
	key string,
	ctl *crud.Controller,
	eng *forms.Engine,
	modalParam string,
	dispatch func(values forms.Values) bool,
	failOpt func(eng *forms.Engine) crud.RenderOptions,
) {
	if err := eng.ParseRequest(r); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}

	ctl.EnsureLoaded(r.Context(), key)

	closed := true
	eng.Submit(func(values forms.Values) error {
		closed = dispatch(values)
		return nil
	})
	// A honeypot submission never reaches dispatch and quietly
	// redirects like a success.

	if closed {
		back := r.URL.Query()
		back.Del(modalParam)
		if modalParam == "delete" {
			back.Del("selected")
		}
		dest := ctl.Config().BaseURL
		if enc := back.Encode(); enc != "" {
			dest += "?" + enc
		}
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	h.crudPage(w, r, key, ctl, true, failOpt(eng))
}

// crudAdd, crudEdit and crudDelete are the three mutation flows, shared
// between the todo and user tables.
func (h *Handler) crudAdd(w http.ResponseWriter, r *http.Request, key string, ctl *crud.Controller) {
	eng := forms.NewEngine(ctl.Config().Fields, nil)
	h.mutate(w, r, key, ctl, eng, "add",
		func(values forms.Values) bool {
			return ctl.Add(r.Context(), key, values)
		},
		func(eng *forms.Engine) crud.RenderOptions {
			return crud.RenderOptions{AddEngine: eng}
		})
}

func (h *Handler) crudEdit(w http.ResponseWriter, r *http.Request, key string, ctl *crud.Controller, id int) {
	// The engine diffs against the snapshot rendered into the form,
	// so only changed fields reach the resource.
	eng := forms.NewEngine(ctl.Config().Fields, nil)
	eng.SubmitChangesOnly = true
	h.mutate(w, r, key, ctl, eng, "edit",
		func(changed forms.Values) bool {
			return ctl.Edit(r.Context(), key, id, changed)
		},
		func(eng *forms.Engine) crud.RenderOptions {
			return crud.RenderOptions{EditEngine: eng}
		})
}

func (h *Handler) crudDelete(w http.ResponseWriter, r *http.Request, key string, ctl *crud.Controller) {
	ids := selectedIDs(r.URL.Query())
	eng := forms.NewEngine(crud.DeleteConfirmFields(), nil)
	h.mutate(w, r, key, ctl, eng, "delete",
		func(forms.Values) bool {
			return ctl.Delete(r.Context(), key, ids)
		},
		func(eng *forms.Engine) crud.RenderOptions {
			return crud.RenderOptions{DeleteEngine: eng}
		})
}

// TodoAdd handles the todo add-modal submission.
func (h *Handler) TodoAdd(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/?login=1", http.StatusSeeOther)
		return
	}
	h.crudAdd(w, r, key, h.todoController(user.ID))
}

// TodoEdit handles the todo edit-modal submission for one row.
func (h *Handler) TodoEdit(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/?login=1", http.StatusSeeOther)
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	h.crudEdit(w, r, key, h.todoController(user.ID), id)
}

// TodoDelete handles the delete-confirm submission for the selected
// rows.
func (h *Handler) TodoDelete(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/?login=1", http.StatusSeeOther)
		return
	}
	h.crudDelete(w, r, key, h.todoController(user.ID))
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (*crud.Controller, string, bool) {
	key := h.busKey(w, r)
	user, ok := h.currentUser(r)
	if !ok || !user.Admin {
		http.Redirect(w, r, "/?login=1", http.StatusSeeOther)
		return nil, "", false
	}
	return h.userController(user), key, true
}

// UserAdd, UserEdit and UserDelete mirror the todo flows for the admin
// accounts table.
func (h *Handler) UserAdd(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	h.crudAdd(w, r, key, ctl)
}

func (h *Handler) UserEdit(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	id, okID := parseID(w, r, "id")
	if !okID {
		return
	}
	h.crudEdit(w, r, key, ctl, id)
}

func (h *Handler) UserDelete(w http.ResponseWriter, r *http.Request) {
	ctl, key, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	h.crudDelete(w, r, key, ctl)
}

// TodosJSON exposes the todo list as JSON for programmatic callers.
func (h *Handler) TodosJSON(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "login required")
		return
	}
	writeJSON(w, http.StatusOK, h.store.Todos(user.ID).List(r.Context()))
}

func selectedIDs(q url.Values) []int {
	var ids []int
	for _, part := range strings.Split(q.Get("selected"), ",") {
		if id, err := strconv.Atoi(part); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
