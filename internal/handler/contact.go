package handler

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"net"
	"net/http"

	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/toast"
	"github.com/KevinAshley/webparts/internal/verify"
)

var contactTmpl = template.Must(template.ParseFS(templateFS, "templates/contact.html"))

// ContactPage renders the inline contact form. Unlike the table pages
// it needs no account; the verification widget stands in for one.
func (h *Handler) ContactPage(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	h.contactPage(w, r, key, forms.NewEngine(h.defs["contact"].FormFields(), nil))
}

func (h *Handler) contactPage(w http.ResponseWriter, r *http.Request, key string, eng *forms.Engine) {
	var form bytes.Buffer
	err := eng.Render(&form, forms.RenderConfig{
		Action:  "/contact",
		FormID:  "wp-contact-form",
		SiteKey: h.siteKey,
	})
	if err != nil {
		log.Printf("rendering contact form: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := contactTmpl.Execute(&buf, map[string]any{
		"Heading": h.defs["contact"].Heading,
		"Form":    template.HTML(form.String()),
	}); err != nil {
		log.Printf("rendering contact page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.renderPage(w, r, key, h.defs["contact"].Heading, template.HTML(buf.String()))
}

// ContactSend verifies the challenge token, then stores the message.
// On failure the form re-renders with the input intact.
func (h *Handler) ContactSend(w http.ResponseWriter, r *http.Request) {
	key := h.busKey(w, r)
	eng := forms.NewEngine(h.defs["contact"].FormFields(), nil)
	if err := eng.ParseRequest(r); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}

	sent := true
	eng.Submit(func(values forms.Values) error {
		token, _ := values["verify"].(string)
		if err := h.verifier.Verify(r.Context(), token, remoteIP(r)); err != nil {
			sent = false
			msg := "Verification failed. Please try again."
			if !errors.Is(err, verify.ErrNotVerified) {
				log.Printf("contact: verify: %v", err)
				msg = "Verification is unavailable right now. Please try again later."
			}
			h.bus.Emit(key, toast.Note{Message: msg, Variant: toast.Error})
			return nil
		}
		delete(values, "verify")
		if err := h.store.SaveContactMessage(r.Context(), values); err != nil {
			sent = false
			log.Printf("contact: save: %v", err)
			h.bus.Emit(key, toast.Note{
				Message: "Could not send your message. Please try again.",
				Variant: toast.Error,
			})
			return nil
		}
		h.bus.Emit(key, toast.Note{
			Message: "Your message has been sent!",
			Variant: toast.Success,
		})
		return nil
	})

	if sent {
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}
	h.contactPage(w, r, key, eng)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
