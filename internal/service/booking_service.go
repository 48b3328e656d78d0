package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/net-idea/huette9/internal/config"
	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/dto"
	"github.com/net-idea/huette9/internal/metrics"
	"github.com/net-idea/huette9/internal/ports"
	"github.com/net-idea/huette9/internal/repository/db"
	"github.com/net-idea/huette9/internal/validator"
)

// ErrRateLimited is returned when a client exceeds the submission budget / Retourné quand un client dépasse le budget de soumission
var ErrRateLimited = errors.New("too many submissions")

// MaxPersons bounds the party size a single booking may request.
const MaxPersons = 20

// dateLayout is the wire format of the date fields / Format des champs de date
const dateLayout = "2006-01-02"

// confirmationTokenRX matches well-formed confirmation tokens. Anything else
// is rejected before touching the database.
var confirmationTokenRX = regexp.MustCompile(`^[0-9a-f]{64}$`)

// personsRX accepts the party size as a plain whole number from 1 to 20.
// No sign, no leading zero, no surrounding whitespace.
var personsRX = regexp.MustCompile(`^(?:[1-9]|1[0-9]|20)$`)

// SubmitResult is the outcome of a booking submission / Résultat d'une soumission de réservation
//
// A nil Booking with a nil error means the submission was silently dropped
// (honeypot). MailError reports a confirmation-mail transport failure; the
// booking is persisted either way.
type SubmitResult struct {
	Booking   *domain.BookingRequest
	MailError error
}

// BookingService drives the booking confirmation state machine / Pilote la machine à états de confirmation de réservation
type BookingService struct {
	repo    ports.BookingRepository
	mail    *MailMan
	limiter ports.SubmissionLimiter
	cfg     *config.Config
	metrics *metrics.Metrics
	random  io.Reader
	now     func() time.Time
}

// NewBookingService initializes the booking service / Initialise le service de réservation
func NewBookingService(
	repo ports.BookingRepository,
	mail *MailMan,
	limiter ports.SubmissionLimiter,
	cfg *config.Config,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		repo:    repo,
		mail:    mail,
		limiter: limiter,
		cfg:     cfg,
		metrics: m,
		random:  rand.Reader,
		now:     time.Now,
	}
}

// Submit validates, persists, and requests confirmation for a booking.
//
// Ordering is deliberate: the rate limiter runs before validation so abusive
// clients cannot probe the validator, and the confirmation mail is sent only
// after the booking is durably stored. A mail transport failure is reported
// in the result, never by rolling back the persisted booking.
func (s *BookingService) Submit(ctx context.Context, form *dto.BookingFormDTO, meta *domain.SubmissionMeta, clientKey, locale string) (*SubmitResult, error) {
	if form.IsHoneypotTripped() {
		s.metrics.RecordBookingSubmission("honeypot")
		slog.Warn("booking honeypot tripped", "client", clientKey)
		return &SubmitResult{}, nil
	}

	if s.limiter != nil && !s.limiter.Allow(clientKey) {
		s.metrics.RecordBookingSubmission("rate_limited")
		s.metrics.RecordRateLimitHit()
		return nil, ErrRateLimited
	}

	arrival, departure, err := s.validate(form)
	if err != nil {
		s.metrics.RecordBookingSubmission("validation")
		return nil, err
	}

	booking, err := domain.NewBookingRequest(s.random)
	if err != nil {
		s.metrics.RecordBookingSubmission("db_error")
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ArrivalDate = arrival
	booking.DepartureDate = departure
	booking.NumberOfPersons = form.NumberOfPersons
	booking.ContactName = form.Name
	booking.ContactEmail = form.Email
	booking.ContactPhone = form.Phone
	booking.Notes = form.Notes
	booking.DataConsent = form.DataConsent
	booking.Meta = meta

	if err := s.persist(ctx, booking); err != nil {
		s.metrics.RecordBookingSubmission("db_error")
		return nil, fmt.Errorf("failed to store booking: %w", err)
	}

	result := &SubmitResult{Booking: booking}
	if err := s.mail.SendBookingConfirmRequest(ctx, booking, locale); err != nil {
		// The booking stays persisted; the visitor sees a mail error and can retry later
		s.metrics.RecordBookingSubmission("mail_error")
		result.MailError = err
		return result, nil
	}

	s.metrics.RecordBookingSubmission("success")
	slog.Info("booking submitted", "id", booking.ID, "arrival", booking.ArrivalDate.Format(dateLayout))
	return result, nil
}

// persist stores the booking, regenerating the token on a unique-key clash.
func (s *BookingService) persist(ctx context.Context, booking *domain.BookingRequest) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = s.repo.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, db.ErrDuplicateToken) {
			return err
		}
		token, tokenErr := domain.NewConfirmationToken(s.random)
		if tokenErr != nil {
			return tokenErr
		}
		booking.ConfirmationToken = token
	}
	return err
}

// validate checks the form and parses the date fields / Valide le formulaire et parse les champs de date
func (s *BookingService) validate(form *dto.BookingFormDTO) (arrival, departure time.Time, err error) {
	v := validator.New()

	v.Check(form.Name != "", "name", "must be provided")
	v.Check(len(form.Name) >= 2, "name", "must be at least 2 characters long")
	v.Check(len(form.Name) <= 255, "name", "must not be more than 255 characters long")
	v.Check(form.Email != "", "email", "must be provided")
	if form.Email != "" {
		v.Check(validator.Matches(form.Email, validator.EmailRX), "email", "must be a valid email address")
		v.Check(len(form.Email) <= 200, "email", "must not be more than 200 characters long")
	}
	v.Check(form.Phone != "", "phone", "must be provided")
	if form.Phone != "" {
		v.Check(len(form.Phone) >= 6, "phone", "must be at least 6 characters long")
		v.Check(len(form.Phone) <= 40, "phone", "must not be more than 40 characters long")
	}
	v.Check(form.DataConsent, "data_consent", "must be accepted")
	v.Check(len(form.Notes) <= 2000, "notes", "must not be more than 2000 characters long")

	v.Check(validator.Matches(form.NumberOfPersons, personsRX), "number_of_persons",
		fmt.Sprintf("must be a whole number between 1 and %d", MaxPersons))

	arrival, arrivalErr := time.Parse(dateLayout, form.ArrivalDate)
	if arrivalErr != nil {
		v.AddError("arrival_date", "must be a valid date")
	}
	departure, departureErr := time.Parse(dateLayout, form.DepartureDate)
	if departureErr != nil {
		v.AddError("departure_date", "must be a valid date")
	}
	if arrivalErr == nil && departureErr == nil {
		v.Check(departure.After(arrival), "departure_date", "must be after the arrival date")
	}

	if !v.Valid() {
		return time.Time{}, time.Time{}, domain.NewValidationError(v.Errors)
	}
	return arrival, departure, nil
}

// Confirm resolves a confirmation link click / Résout un clic sur le lien de confirmation
//
// Exactly one call per token ever observes ConfirmStatusConfirmed; the owner
// notification fires on that edge only. Repeated clicks report
// already_confirmed without side effects. The notification runs off the
// request goroutine with its own timeout: the confirmation is durable before
// it starts, and SMTP latency never delays the visitor's response.
func (s *BookingService) Confirm(ctx context.Context, token string) (domain.ConfirmStatus, error) {
	if !confirmationTokenRX.MatchString(token) {
		s.metrics.RecordBookingConfirmation(string(domain.ConfirmStatusInvalid))
		return domain.ConfirmStatusInvalid, nil
	}

	status, err := s.repo.ConfirmIfPending(ctx, token, s.now())
	if err != nil {
		return domain.ConfirmStatusInvalid, fmt.Errorf("failed to confirm booking: %w", err)
	}

	s.metrics.RecordBookingConfirmation(string(status))

	if status == domain.ConfirmStatusConfirmed {
		booking, err := s.repo.GetByToken(ctx, token)
		if err != nil {
			slog.Error("failed to load confirmed booking for notification", "err", err)
			return status, nil
		}
		// Owner notification is best effort; the confirmation itself is
		// already durable at this point.
		go s.notifyOwnerAsync(booking)
		slog.Info("booking confirmed", "id", booking.ID)
	}

	return status, nil
}

// notifyOwnerAsync sends the owner notice with its own timeout / Envoie la notification au propriétaire avec son propre timeout
func (s *BookingService) notifyOwnerAsync(booking *domain.BookingRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.mail.SendBookingConfirmedNotice(ctx, booking); err != nil {
		slog.Error("failed to send booking confirmed notice", "id", booking.ID, "err", err)
	}
}
