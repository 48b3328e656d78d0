package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/net-idea/huette9/internal/config"
	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/dto"
	"github.com/net-idea/huette9/internal/metrics"
	"github.com/net-idea/huette9/internal/ports"
	"github.com/net-idea/huette9/internal/validator"
)

// ContactResult is the outcome of a contact submission / Résultat d'une soumission de contact
// A nil Message with a nil error means the submission was silently dropped (honeypot).
type ContactResult struct {
	Message   *domain.ContactMessage
	MailError error
}

// ContactService handles contact form submissions / Gère les soumissions du formulaire de contact
type ContactService struct {
	repo    ports.ContactRepository
	mail    *MailMan
	limiter ports.SubmissionLimiter
	cfg     *config.Config
	metrics *metrics.Metrics
}

// NewContactService initializes the contact service / Initialise le service de contact
func NewContactService(
	repo ports.ContactRepository,
	mail *MailMan,
	limiter ports.SubmissionLimiter,
	cfg *config.Config,
	m *metrics.Metrics,
) *ContactService {
	return &ContactService{
		repo:    repo,
		mail:    mail,
		limiter: limiter,
		cfg:     cfg,
		metrics: m,
	}
}

// Submit validates, persists, and forwards a contact message.
// The owner notification failing is reported in the result; the message stays
// persisted either way. The visitor copy is strictly best effort.
func (s *ContactService) Submit(ctx context.Context, form *dto.ContactFormDTO, meta *domain.SubmissionMeta, clientKey, locale string) (*ContactResult, error) {
	if form.IsHoneypotTripped() {
		s.metrics.RecordContactSubmission("honeypot")
		slog.Warn("contact honeypot tripped", "client", clientKey)
		return &ContactResult{}, nil
	}

	if s.limiter != nil && !s.limiter.Allow(clientKey) {
		s.metrics.RecordContactSubmission("rate_limited")
		s.metrics.RecordRateLimitHit()
		return nil, ErrRateLimited
	}

	if err := s.validate(form); err != nil {
		s.metrics.RecordContactSubmission("validation")
		return nil, err
	}

	msg := domain.NewContactMessage()
	msg.Name = form.Name
	msg.Email = form.Email
	msg.Phone = form.Phone
	msg.Subject = form.Subject
	msg.Message = form.Message
	msg.Consent = form.Consent
	msg.Copy = form.Copy
	msg.Meta = meta

	if err := s.repo.Create(ctx, msg); err != nil {
		s.metrics.RecordContactSubmission("db_error")
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}

	result := &ContactResult{Message: msg}
	if err := s.mail.SendContactNotification(ctx, msg); err != nil {
		s.metrics.RecordContactSubmission("mail_error")
		result.MailError = err
		return result, nil
	}

	if msg.Copy {
		if err := s.mail.SendContactCopy(ctx, msg, locale); err != nil {
			// Copy failure does not degrade the outcome; the owner already has the message
			slog.Warn("failed to send contact copy", "id", msg.ID, "err", err)
		}
	}

	s.metrics.RecordContactSubmission("success")
	slog.Info("contact message submitted", "id", msg.ID)
	return result, nil
}

// validate checks the contact form fields / Valide les champs du formulaire de contact
func (s *ContactService) validate(form *dto.ContactFormDTO) error {
	v := validator.New()

	v.Check(form.Name != "", "name", "must be provided")
	v.Check(len(form.Name) >= 2, "name", "must be at least 2 characters long")
	v.Check(len(form.Name) <= 160, "name", "must not be more than 160 characters long")
	v.Check(form.Email != "", "email", "must be provided")
	if form.Email != "" {
		v.Check(validator.Matches(form.Email, validator.EmailRX), "email", "must be a valid email address")
		v.Check(len(form.Email) <= 200, "email", "must not be more than 200 characters long")
	}
	v.Check(len(form.Phone) <= 40, "phone", "must not be more than 40 characters long")
	v.Check(form.Message != "", "message", "must be provided")
	v.Check(len(form.Message) >= 10, "message", "must be at least 10 characters long")
	v.Check(len(form.Message) <= 4000, "message", "must not be more than 4000 characters long")
	v.Check(len(form.Subject) <= 255, "subject", "must not be more than 255 characters long")
	v.Check(form.Consent, "consent", "must be accepted")

	if !v.Valid() {
		return domain.NewValidationError(v.Errors)
	}
	return nil
}
