package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"log/slog"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/net-idea/huette9/internal/config"
	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/metrics"
	"github.com/net-idea/huette9/internal/ports"
)

//go:embed templates
var mailTemplateFS embed.FS

// fallbackLocale is used when no template set exists for the requested locale.
const fallbackLocale = "en"

// Mail kinds, also used as metric labels.
const (
	MailBookingConfirmRequest = "booking_confirm_request"
	MailBookingConfirmed      = "booking_confirmed"
	MailContactNotification   = "contact_notification"
	MailContactCopy           = "contact_copy"
)

// mailSubjects maps kind and locale to the subject line / Associe type et locale à la ligne de sujet
var mailSubjects = map[string]map[string]string{
	MailBookingConfirmRequest: {
		"de": "Hütte9 — Bitte bestätigen Sie Ihre Buchung",
		"en": "Hütte9 — Please Confirm Your Booking",
	},
	MailBookingConfirmed: {
		"de": "Hütte9 — Buchung bestätigt",
		"en": "Hütte9 — Booking Confirmed",
	},
	MailContactNotification: {
		"de": "Hütte9 — Neue Kontaktanfrage",
		"en": "Hütte9 — New Contact Message",
	},
	MailContactCopy: {
		"de": "Hütte9 — Ihre Nachricht an uns",
		"en": "Hütte9 — Your Message to Us",
	},
}

// MailMan renders and dispatches all outgoing mail / Rend et expédie tout le courrier sortant
//
// Templates are keyed by "locale/kind"; a missing locale falls back to English.
type MailMan struct {
	sender  ports.MailSender
	cfg     *config.Config
	metrics *metrics.Metrics

	textTemplates map[string]*texttemplate.Template
	htmlTemplates map[string]*htmltemplate.Template
}

// NewMailMan parses embedded templates and wires the transport.
// Returns error if any template fails to parse / Retourne une erreur si un template ne parse pas
func NewMailMan(sender ports.MailSender, cfg *config.Config, m *metrics.Metrics) (*MailMan, error) {
	mm := &MailMan{
		sender:        sender,
		cfg:           cfg,
		metrics:       m,
		textTemplates: make(map[string]*texttemplate.Template),
		htmlTemplates: make(map[string]*htmltemplate.Template),
	}

	paths, err := fs.Glob(mailTemplateFS, "templates/*/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to list mail templates: %w", err)
	}

	for _, path := range paths {
		// templates/<locale>/<kind>.<txt|html>.tmpl
		parts := strings.Split(path, "/")
		if len(parts) != 3 {
			continue
		}
		locale := parts[1]
		name := parts[2]

		raw, err := fs.ReadFile(mailTemplateFS, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read mail template %s: %w", path, err)
		}

		switch {
		case strings.HasSuffix(name, ".txt.tmpl"):
			kind := strings.TrimSuffix(name, ".txt.tmpl")
			tmpl, err := texttemplate.New(path).Parse(string(raw))
			if err != nil {
				return nil, fmt.Errorf("failed to parse mail template %s: %w", path, err)
			}
			mm.textTemplates[locale+"/"+kind] = tmpl
		case strings.HasSuffix(name, ".html.tmpl"):
			kind := strings.TrimSuffix(name, ".html.tmpl")
			tmpl, err := htmltemplate.New(path).Parse(string(raw))
			if err != nil {
				return nil, fmt.Errorf("failed to parse mail template %s: %w", path, err)
			}
			mm.htmlTemplates[locale+"/"+kind] = tmpl
		}
	}

	// Every kind must at least exist in the fallback locale
	for _, kind := range []string{MailBookingConfirmRequest, MailBookingConfirmed, MailContactNotification, MailContactCopy} {
		if _, ok := mm.textTemplates[fallbackLocale+"/"+kind]; !ok {
			return nil, fmt.Errorf("missing %s mail template for locale %s", kind, fallbackLocale)
		}
	}

	return mm, nil
}

// resolveLocale returns the requested locale if templates exist for it / Retourne la locale demandée si des templates existent
func (mm *MailMan) resolveLocale(locale string) string {
	if _, ok := mm.textTemplates[locale+"/"+MailBookingConfirmRequest]; ok {
		return locale
	}
	return fallbackLocale
}

// formatDate renders a date the way the locale expects it / Formate une date selon la locale
func formatDate(t time.Time, locale string) string {
	if locale == "de" {
		return t.Format("02.01.2006")
	}
	return t.Format("02 Jan 2006")
}

// subject returns the subject for kind and locale / Retourne le sujet pour le type et la locale
func subject(kind, locale string) string {
	if s, ok := mailSubjects[kind][locale]; ok {
		return s
	}
	return mailSubjects[kind][fallbackLocale]
}

// render executes both template flavors for a kind / Exécute les deux variantes de template pour un type
func (mm *MailMan) render(kind, locale string, data any) (text, html string, err error) {
	var textBuf bytes.Buffer
	if tmpl, ok := mm.textTemplates[locale+"/"+kind]; ok {
		if err := tmpl.Execute(&textBuf, data); err != nil {
			return "", "", fmt.Errorf("failed to render %s text template: %w", kind, err)
		}
	}

	var htmlBuf bytes.Buffer
	if tmpl, ok := mm.htmlTemplates[locale+"/"+kind]; ok {
		if err := tmpl.Execute(&htmlBuf, data); err != nil {
			return "", "", fmt.Errorf("failed to render %s html template: %w", kind, err)
		}
	}

	return textBuf.String(), htmlBuf.String(), nil
}

// send delivers a message and records the outcome / Délivre un message et enregistre le résultat
func (mm *MailMan) send(ctx context.Context, kind string, msg ports.Message) error {
	err := mm.sender.Send(ctx, msg)
	if err != nil {
		mm.metrics.RecordMailDelivery(kind, "failed")
		slog.Error("mail delivery failed", "kind", kind, "to", msg.To.Email, "err", err)
		return err
	}
	mm.metrics.RecordMailDelivery(kind, "sent")
	return nil
}

func (mm *MailMan) from() ports.Address {
	return ports.Address{Email: mm.cfg.SMTP.From, Name: mm.cfg.Site.Name}
}

func (mm *MailMan) owner() ports.Address {
	return ports.Address{Email: mm.cfg.Mail.OwnerEmail, Name: mm.cfg.Mail.OwnerName}
}

func (mm *MailMan) replyTo() ports.Address {
	if mm.cfg.Mail.ReplyTo == "" {
		return ports.Address{}
	}
	return ports.Address{Email: mm.cfg.Mail.ReplyTo}
}

// bookingData is the template payload for booking mails / Charge utile des templates de réservation
type bookingData struct {
	Name          string
	Email         string
	Phone         string
	ArrivalDate   string
	DepartureDate string
	Persons       string
	Notes         string
	ConfirmURL    string
}

func (mm *MailMan) bookingData(booking *domain.BookingRequest, locale string) bookingData {
	return bookingData{
		Name:          booking.ContactName,
		Email:         booking.ContactEmail,
		Phone:         booking.ContactPhone,
		ArrivalDate:   formatDate(booking.ArrivalDate, locale),
		DepartureDate: formatDate(booking.DepartureDate, locale),
		Persons:       booking.NumberOfPersons,
		Notes:         booking.Notes,
		ConfirmURL:    fmt.Sprintf("%s/booking/confirm/%s", mm.cfg.Server.BaseURL, booking.ConfirmationToken),
	}
}

// SendBookingConfirmRequest mails the confirmation link to the visitor / Envoie le lien de confirmation au visiteur
func (mm *MailMan) SendBookingConfirmRequest(ctx context.Context, booking *domain.BookingRequest, locale string) error {
	locale = mm.resolveLocale(locale)
	text, html, err := mm.render(MailBookingConfirmRequest, locale, mm.bookingData(booking, locale))
	if err != nil {
		return err
	}

	return mm.send(ctx, MailBookingConfirmRequest, ports.Message{
		From:     mm.from(),
		To:       ports.Address{Email: booking.ContactEmail, Name: booking.ContactName},
		ReplyTo:  mm.replyTo(),
		Subject:  subject(MailBookingConfirmRequest, locale),
		TextBody: text,
		HTMLBody: html,
	})
}

// SendBookingConfirmedNotice notifies the owner about a confirmed booking / Notifie le propriétaire d'une réservation confirmée
// Owner mail always uses the site default locale.
func (mm *MailMan) SendBookingConfirmedNotice(ctx context.Context, booking *domain.BookingRequest) error {
	locale := mm.resolveLocale(mm.cfg.Site.DefaultLocale)
	text, html, err := mm.render(MailBookingConfirmed, locale, mm.bookingData(booking, locale))
	if err != nil {
		return err
	}

	return mm.send(ctx, MailBookingConfirmed, ports.Message{
		From:     mm.from(),
		To:       mm.owner(),
		ReplyTo:  ports.Address{Email: booking.ContactEmail, Name: booking.ContactName},
		Subject:  subject(MailBookingConfirmed, locale),
		TextBody: text,
		HTMLBody: html,
	})
}

// contactData is the template payload for contact mails / Charge utile des templates de contact
type contactData struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// SendContactNotification forwards a contact message to the owner / Transmet un message de contact au propriétaire
func (mm *MailMan) SendContactNotification(ctx context.Context, msg *domain.ContactMessage) error {
	locale := mm.resolveLocale(mm.cfg.Site.DefaultLocale)
	data := contactData{Name: msg.Name, Email: msg.Email, Phone: msg.Phone, Subject: msg.Subject, Message: msg.Message}
	text, html, err := mm.render(MailContactNotification, locale, data)
	if err != nil {
		return err
	}

	return mm.send(ctx, MailContactNotification, ports.Message{
		From:     mm.from(),
		To:       mm.owner(),
		ReplyTo:  ports.Address{Email: msg.Email, Name: msg.Name},
		Subject:  subject(MailContactNotification, locale),
		TextBody: text,
		HTMLBody: html,
	})
}

// SendContactCopy mails the visitor a copy of their own message / Envoie au visiteur une copie de son message
func (mm *MailMan) SendContactCopy(ctx context.Context, msg *domain.ContactMessage, locale string) error {
	locale = mm.resolveLocale(locale)
	data := contactData{Name: msg.Name, Email: msg.Email, Phone: msg.Phone, Subject: msg.Subject, Message: msg.Message}
	text, html, err := mm.render(MailContactCopy, locale, data)
	if err != nil {
		return err
	}

	return mm.send(ctx, MailContactCopy, ports.Message{
		From:     mm.from(),
		To:       ports.Address{Email: msg.Email, Name: msg.Name},
		ReplyTo:  mm.replyTo(),
		Subject:  subject(MailContactCopy, locale),
		TextBody: text,
		HTMLBody: html,
	})
}
