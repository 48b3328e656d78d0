package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/dto"
	"github.com/net-idea/huette9/internal/service"
)

// bookingCSRFName is the token name bound to the booking form. It seeds the
// hidden CSRF field; the in-page protocol replaces it with a token on submit.
const bookingCSRFName = "booking-form"

// maxFormBodyBytes bounds form POST bodies.
const maxFormBodyBytes = 64 * 1024

// flash whitelists the post-redirect status flags so nothing
// attacker-controlled flows into the page state.
func flash(r *http.Request) string {
	switch s := r.URL.Query().Get("status"); s {
	case "submitted", "mail_error", "db_error", "rate_limited":
		return s
	default:
		return ""
	}
}

// BookingPage renders the booking request form.
func (h *Handler) BookingPage(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(r, pick(r, "Buchungsanfrage", "Booking Request"))
	data.CSRFName = bookingCSRFName
	data.Flash = flash(r)

	h.render(w, http.StatusOK, "booking", data)
}

// BookingSubmit handles the booking form POST.
//
// The post-redirect-get pattern applies to every terminal outcome except
// validation failures, which re-render the form with sticky values. A mail
// delivery failure after successful persistence redirects with its own
// status; the stored booking is never rolled back.
func (h *Handler) BookingSubmit(w http.ResponseWriter, r *http.Request) {
	limitRequestBody(w, r, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := dto.ParseBookingForm(r.PostForm)
	locale := localeFrom(r.Context(), h.container.Config.Site.DefaultLocale)

	result, err := h.container.BookingSvc.Submit(r.Context(), form, h.submissionMeta(r), h.clientKey(r), locale)
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.Is(err, service.ErrRateLimited):
			http.Redirect(w, r, "/booking?status=rate_limited", http.StatusSeeOther)
		case errors.As(err, &vErr):
			data := h.newPageData(r, pick(r, "Buchungsanfrage", "Booking Request"))
			data.CSRFName = bookingCSRFName
			data.Errors = vErr.Fields
			data.Form = bookingFormValues(form)
			h.render(w, http.StatusUnprocessableEntity, "booking", data)
		default:
			slog.Error("Failed to store booking request", "error", err)
			http.Redirect(w, r, "/booking?status=db_error", http.StatusSeeOther)
		}
		return
	}

	if result.MailError != nil {
		http.Redirect(w, r, "/booking?status=mail_error", http.StatusSeeOther)
		return
	}

	// Honeypot drops land here too: indistinguishable from success.
	http.Redirect(w, r, "/booking?status=submitted", http.StatusSeeOther)
}

// BookingConfirm handles the confirmation link from the visitor's mailbox.
// A malformed or unknown token renders the invalid page with 404; repeated
// clicks on a confirmed link are acknowledged without a second notification.
func (h *Handler) BookingConfirm(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	status, err := h.container.BookingSvc.Confirm(r.Context(), token)
	if err != nil {
		slog.Error("Failed to confirm booking", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := h.newPageData(r, pick(r, "Buchungsbestätigung", "Booking Confirmation"))
	data.Outcome = string(status)

	code := http.StatusOK
	if status == domain.ConfirmStatusInvalid {
		code = http.StatusNotFound
	}
	h.render(w, code, "booking_confirm", data)
}

// bookingFormValues maps the parsed form back to sticky template values.
func bookingFormValues(form *dto.BookingFormDTO) map[string]string {
	values := map[string]string{
		"arrival_date":      form.ArrivalDate,
		"departure_date":    form.DepartureDate,
		"number_of_persons": form.NumberOfPersons,
		"name":              form.Name,
		"email":             form.Email,
		"phone":             form.Phone,
		"notes":             form.Notes,
	}
	if form.DataConsent {
		values["data_consent"] = "on"
	}
	return values
}

// pick chooses the German or English variant for the resolved locale.
func pick(r *http.Request, de, en string) string {
	if localeFrom(r.Context(), "de") == "de" {
		return de
	}
	return en
}
