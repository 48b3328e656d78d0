package dto

import (
	"net/url"
	"strings"
)

// BookingFormDTO carries raw booking form input / Transporte les données brutes du formulaire de réservation
// Values arrive as strings straight from the POST body; validation happens in the service layer.
type BookingFormDTO struct {
	ArrivalDate     string // Arrival date, YYYY-MM-DD / Date d'arrivée
	DepartureDate   string // Departure date, YYYY-MM-DD / Date de départ
	NumberOfPersons string // Party size / Nombre de personnes
	Name            string
	Email           string
	Phone           string
	Notes           string
	DataConsent     bool

	// Honeypot fields. Hidden in the rendered form, any content marks the
	// submission as automated.
	Website  string
	EmailRep string
}

// ParseBookingForm extracts booking fields from form values / Extrait les champs de réservation des valeurs du formulaire
func ParseBookingForm(values url.Values) *BookingFormDTO {
	return &BookingFormDTO{
		ArrivalDate:     strings.TrimSpace(values.Get("arrival_date")),
		DepartureDate:   strings.TrimSpace(values.Get("departure_date")),
		NumberOfPersons: strings.TrimSpace(values.Get("number_of_persons")),
		Name:            strings.TrimSpace(values.Get("name")),
		Email:           strings.TrimSpace(values.Get("email")),
		Phone:           strings.TrimSpace(values.Get("phone")),
		Notes:           strings.TrimSpace(values.Get("notes")),
		DataConsent:     values.Get("data_consent") == "on" || values.Get("data_consent") == "1",
		Website:         values.Get("website"),
		EmailRep:        values.Get("emailrep"),
	}
}

// IsHoneypotTripped reports whether a hidden field was filled / Indique si un champ caché a été rempli
func (f *BookingFormDTO) IsHoneypotTripped() bool {
	return f.Website != "" || f.EmailRep != ""
}

// ContactFormDTO carries raw contact form input / Transporte les données brutes du formulaire de contact
type ContactFormDTO struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Consent bool
	Copy    bool // visitor wants a copy of the mail / le visiteur veut une copie du mail

	Website  string
	EmailRep string
}

// ParseContactForm extracts contact fields from form values / Extrait les champs de contact des valeurs du formulaire
func ParseContactForm(values url.Values) *ContactFormDTO {
	return &ContactFormDTO{
		Name:     strings.TrimSpace(values.Get("name")),
		Email:    strings.TrimSpace(values.Get("email")),
		Phone:    strings.TrimSpace(values.Get("phone")),
		Subject:  strings.TrimSpace(values.Get("subject")),
		Message:  strings.TrimSpace(values.Get("message")),
		Consent:  values.Get("consent") == "on" || values.Get("consent") == "1",
		Copy:     values.Get("copy") == "on" || values.Get("copy") == "1",
		Website:  values.Get("website"),
		EmailRep: values.Get("emailrep"),
	}
}

// IsHoneypotTripped reports whether a hidden field was filled / Indique si un champ caché a été rempli
func (f *ContactFormDTO) IsHoneypotTripped() bool {
	return f.Website != "" || f.EmailRep != ""
}
