package domain

import "time"

// ContactMessage represents a contact form submission / Représente une soumission du formulaire de contact
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	Consent   bool
	Copy      bool // visitor asked for a copy of the mail / le visiteur demande une copie du mail
	CreatedAt time.Time
	Meta      *SubmissionMeta
}

// NewContactMessage constructs an empty message stamped with the current time.
func NewContactMessage() *ContactMessage {
	return &ContactMessage{CreatedAt: time.Now().UTC()}
}
