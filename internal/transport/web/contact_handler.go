package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/dto"
	"github.com/net-idea/huette9/internal/service"
)

// contactCSRFName is the token name bound to the contact form.
const contactCSRFName = "contact-form"

// ContactPage renders the contact form.
func (h *Handler) ContactPage(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(r, pick(r, "Kontakt", "Contact"))
	data.CSRFName = contactCSRFName
	data.Flash = flash(r)

	h.render(w, http.StatusOK, "contact", data)
}

// ContactSubmit handles the contact form POST. Outcome handling mirrors the
// booking form: redirect on terminal outcomes, re-render on validation
// failures.
func (h *Handler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	limitRequestBody(w, r, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := dto.ParseContactForm(r.PostForm)
	locale := localeFrom(r.Context(), h.container.Config.Site.DefaultLocale)

	result, err := h.container.ContactSvc.Submit(r.Context(), form, h.submissionMeta(r), h.clientKey(r), locale)
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.Is(err, service.ErrRateLimited):
			http.Redirect(w, r, "/contact?status=rate_limited", http.StatusSeeOther)
		case errors.As(err, &vErr):
			data := h.newPageData(r, pick(r, "Kontakt", "Contact"))
			data.CSRFName = contactCSRFName
			data.Errors = vErr.Fields
			data.Form = contactFormValues(form)
			h.render(w, http.StatusUnprocessableEntity, "contact", data)
		default:
			slog.Error("Failed to store contact message", "error", err)
			http.Redirect(w, r, "/contact?status=db_error", http.StatusSeeOther)
		}
		return
	}

	if result.MailError != nil {
		http.Redirect(w, r, "/contact?status=mail_error", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/contact?status=submitted", http.StatusSeeOther)
}

// contactFormValues maps the parsed form back to sticky template values.
func contactFormValues(form *dto.ContactFormDTO) map[string]string {
	values := map[string]string{
		"name":    form.Name,
		"email":   form.Email,
		"phone":   form.Phone,
		"subject": form.Subject,
		"message": form.Message,
	}
	if form.Consent {
		values["consent"] = "on"
	}
	if form.Copy {
		values["copy"] = "on"
	}
	return values
}
