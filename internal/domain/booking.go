package domain

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// ConfirmationTokenBytes is the raw entropy of a confirmation token / Entropie brute du token de confirmation
const ConfirmationTokenBytes = 32

// ConfirmationTokenLength is the hex-encoded token length / Longueur du token encodé en hexadécimal
const ConfirmationTokenLength = 2 * ConfirmationTokenBytes

// BookingRequest represents a visitor's booking request / Représente une demande de réservation d'un visiteur
//
// The confirmation token is generated exactly once, at construction, and is
// never regenerated for an existing record. A record starts unconfirmed;
// ConfirmedAt is non-nil exactly when IsConfirmed is true.
type BookingRequest struct {
	ID                int64
	ArrivalDate       time.Time
	DepartureDate     time.Time
	NumberOfPersons   string // stored as text, constrained to 1-20 by validation / stocké en texte, borné 1-20 par la validation
	ContactName       string
	ContactEmail      string
	ContactPhone      string
	Notes             string
	DataConsent       bool
	ConfirmationToken string // 64 lowercase hex characters, unique / 64 caractères hexadécimaux, unique
	IsConfirmed       bool
	ConfirmedAt       *time.Time
	CreatedAt         time.Time
	Meta              *SubmissionMeta
}

// NewBookingRequest constructs a booking with a fresh confirmation token.
// The random source must be cryptographically secure (crypto/rand in production).
func NewBookingRequest(random io.Reader) (*BookingRequest, error) {
	token, err := NewConfirmationToken(random)
	if err != nil {
		return nil, err
	}

	return &BookingRequest{
		ConfirmationToken: token,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// NewConfirmationToken draws 32 random bytes and hex-encodes them / Tire 32 octets aléatoires et les encode en hexadécimal
func NewConfirmationToken(random io.Reader) (string, error) {
	buf := make([]byte, ConfirmationTokenBytes)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", fmt.Errorf("failed to generate confirmation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Confirm marks the booking confirmed at the given instant / Marque la réservation confirmée à l'instant donné
// It is a no-op when the booking is already confirmed.
func (b *BookingRequest) Confirm(at time.Time) {
	if b.IsConfirmed {
		return
	}
	b.IsConfirmed = true
	at = at.UTC()
	b.ConfirmedAt = &at
}

// ConfirmStatus is the outcome of a confirmation attempt / Résultat d'une tentative de confirmation
type ConfirmStatus string

const (
	// ConfirmStatusConfirmed means this attempt observed the pending→confirmed edge
	ConfirmStatusConfirmed ConfirmStatus = "confirmed"
	// ConfirmStatusAlreadyConfirmed means the booking was confirmed earlier / La réservation était déjà confirmée
	ConfirmStatusAlreadyConfirmed ConfirmStatus = "already_confirmed"
	// ConfirmStatusInvalid means no booking carries the token / Aucune réservation ne porte ce token
	ConfirmStatusInvalid ConfirmStatus = "invalid"
)

// SubmissionMeta records where a form submission came from / Enregistre la provenance d'une soumission
type SubmissionMeta struct {
	ID        int64
	IPHash    string // SHA-256 of the client address, never the raw IP / SHA-256 de l'adresse client, jamais l'IP brute
	UserAgent string
	Host      string
	Time      string
}
