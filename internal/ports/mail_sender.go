package ports

import "context"

// Message is a fully rendered email / Un email entièrement rendu
//
// Rendering (templates, locale selection) happens before a Message reaches the
// transport; the transport only delivers it.
type Message struct {
	From     Address
	To       Address
	ReplyTo  Address // zero value means no Reply-To header / valeur zéro signifie pas d'en-tête Reply-To
	Subject  string
	TextBody string
	HTMLBody string
}

// Address pairs an email address with a display name / Associe une adresse email à un nom d'affichage
type Address struct {
	Email string
	Name  string
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a.Email == ""
}

// MailSender delivers rendered messages / Délivre les messages rendus
type MailSender interface {
	// Send delivers the message or reports a transport failure / Délivre le message ou signale un échec de transport
	Send(ctx context.Context, msg Message) error
}
