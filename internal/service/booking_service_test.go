package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/net-idea/huette9/internal/config"
	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/dto"
	"github.com/net-idea/huette9/internal/metrics"
	"github.com/net-idea/huette9/internal/mocks"
	"github.com/prometheus/client_golang/prometheus"
)

const testOwnerEmail = "owner@example.com"

func newTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:    "8080",
			BaseURL: "http://localhost:8080",
		},
		Site: config.SiteConfig{
			Name:             "Hütte9",
			DefaultLocale:    "de",
			SupportedLocales: []string{"de", "en"},
		},
		SMTP: config.SMTPConfig{
			From: "no-reply@example.com",
		},
		Mail: config.MailConfig{
			OwnerName:  "Owner",
			OwnerEmail: testOwnerEmail,
		},
		Environment: "development",
	}
}

func newBookingTestService(t *testing.T) (*BookingService, *mocks.MockBookingRepository, *mocks.MockMailSender, *mocks.MockLimiter) {
	t.Helper()

	cfg := newTestConfig()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	sender := mocks.NewMockMailSender()

	mailman, err := NewMailMan(sender, cfg, m)
	if err != nil {
		t.Fatalf("Failed to create mailman: %v", err)
	}

	repo := mocks.NewMockBookingRepository()
	limiter := mocks.NewMockLimiter()
	svc := NewBookingService(repo, mailman, limiter, cfg, m)
	return svc, repo, sender, limiter
}

func validBookingForm() *dto.BookingFormDTO {
	return &dto.BookingFormDTO{
		ArrivalDate:     "2026-10-02",
		DepartureDate:   "2026-10-09",
		NumberOfPersons: "4",
		Name:            "Erika Musterfrau",
		Email:           "erika@example.com",
		Phone:           "+49 170 1234567",
		Notes:           "Anreise gegen 18 Uhr",
		DataConsent:     true,
	}
}

func TestBookingSubmit_Success(t *testing.T) {
	svc, repo, sender, _ := newBookingTestService(t)

	result, err := svc.Submit(context.Background(), validBookingForm(), nil, "client-1", "de")
	if err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}
	if result.Booking == nil {
		t.Fatal("Expected booking in result")
	}
	if result.MailError != nil {
		t.Errorf("Unexpected mail error: %v", result.MailError)
	}

	booking := result.Booking
	if len(booking.ConfirmationToken) != domain.ConfirmationTokenLength {
		t.Errorf("Expected %d char token, got %d", domain.ConfirmationTokenLength, len(booking.ConfirmationToken))
	}
	if booking.IsConfirmed {
		t.Error("New booking must start unconfirmed")
	}
	if booking.ConfirmedAt != nil {
		t.Error("New booking must not carry a confirmation timestamp")
	}
	if repo.CreateCalls != 1 {
		t.Errorf("Expected 1 Create call, got %d", repo.CreateCalls)
	}

	// Confirmation mail goes to the visitor and carries the token link
	visitorMail := sender.SentTo("erika@example.com")
	if len(visitorMail) != 1 {
		t.Fatalf("Expected 1 mail to visitor, got %d", len(visitorMail))
	}
	wantURL := "http://localhost:8080/booking/confirm/" + booking.ConfirmationToken
	if !strings.Contains(visitorMail[0].TextBody, wantURL) {
		t.Errorf("Confirmation mail does not contain link %s", wantURL)
	}
	if !strings.Contains(visitorMail[0].HTMLBody, wantURL) {
		t.Error("HTML body does not contain confirmation link")
	}
}

func TestBookingSubmit_TokensAreUnique(t *testing.T) {
	svc, _, _, _ := newBookingTestService(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		form := validBookingForm()
		form.Email = fmt.Sprintf("guest%d@example.com", i)
		result, err := svc.Submit(context.Background(), form, nil, "client-1", "de")
		if err != nil {
			t.Fatalf("Submit() returned error: %v", err)
		}
		token := result.Booking.ConfirmationToken
		if seen[token] {
			t.Fatalf("Duplicate confirmation token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestBookingSubmit_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*dto.BookingFormDTO)
		wantField string
	}{
		{"Missing name", func(f *dto.BookingFormDTO) { f.Name = "" }, "name"},
		{"Name too short", func(f *dto.BookingFormDTO) { f.Name = "E" }, "name"},
		{"Name too long", func(f *dto.BookingFormDTO) { f.Name = strings.Repeat("x", 256) }, "name"},
		{"Missing email", func(f *dto.BookingFormDTO) { f.Email = "" }, "email"},
		{"Invalid email", func(f *dto.BookingFormDTO) { f.Email = "not-an-email" }, "email"},
		{"Email too long", func(f *dto.BookingFormDTO) {
			f.Email = strings.Repeat("x", 195) + "@example.com"
		}, "email"},
		{"Missing phone", func(f *dto.BookingFormDTO) { f.Phone = "" }, "phone"},
		{"Phone too short", func(f *dto.BookingFormDTO) { f.Phone = "12345" }, "phone"},
		{"Phone too long", func(f *dto.BookingFormDTO) { f.Phone = strings.Repeat("9", 41) }, "phone"},
		{"Consent not given", func(f *dto.BookingFormDTO) { f.DataConsent = false }, "data_consent"},
		{"Persons zero", func(f *dto.BookingFormDTO) { f.NumberOfPersons = "0" }, "number_of_persons"},
		{"Persons above limit", func(f *dto.BookingFormDTO) { f.NumberOfPersons = "21" }, "number_of_persons"},
		{"Persons not a number", func(f *dto.BookingFormDTO) { f.NumberOfPersons = "many" }, "number_of_persons"},
		{"Persons with sign", func(f *dto.BookingFormDTO) { f.NumberOfPersons = "+5" }, "number_of_persons"},
		{"Persons leading zero", func(f *dto.BookingFormDTO) { f.NumberOfPersons = "007" }, "number_of_persons"},
		{"Bad arrival date", func(f *dto.BookingFormDTO) { f.ArrivalDate = "02.10.2026" }, "arrival_date"},
		{"Departure before arrival", func(f *dto.BookingFormDTO) {
			f.ArrivalDate = "2026-10-09"
			f.DepartureDate = "2026-10-02"
		}, "departure_date"},
		{"Departure equals arrival", func(f *dto.BookingFormDTO) {
			f.DepartureDate = f.ArrivalDate
		}, "departure_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, sender, _ := newBookingTestService(t)

			form := validBookingForm()
			tt.mutate(form)

			_, err := svc.Submit(context.Background(), form, nil, "client-1", "de")
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if _, ok := vErr.Fields[tt.wantField]; !ok {
				t.Errorf("Expected error on field %q, got %v", tt.wantField, vErr.Fields)
			}

			// Rejected submissions must not persist or mail anything
			if repo.CreateCalls != 0 {
				t.Errorf("Expected no Create calls, got %d", repo.CreateCalls)
			}
			if sender.SendCalls != 0 {
				t.Errorf("Expected no mails, got %d", sender.SendCalls)
			}
		})
	}
}

func TestBookingSubmit_PersonsBoundary(t *testing.T) {
	for _, persons := range []string{"1", "9", "10", "19", "20"} {
		t.Run("persons "+persons, func(t *testing.T) {
			svc, _, _, _ := newBookingTestService(t)

			form := validBookingForm()
			form.NumberOfPersons = persons
			result, err := svc.Submit(context.Background(), form, nil, "client-1", "de")
			if err != nil {
				t.Fatalf("Submit() returned error for %s persons: %v", persons, err)
			}
			if result.Booking == nil {
				t.Fatal("Expected booking in result")
			}
		})
	}
}

func TestBookingSubmit_FieldLengthBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.BookingFormDTO)
	}{
		{"Name minimum", func(f *dto.BookingFormDTO) { f.Name = "Li" }},
		{"Name maximum", func(f *dto.BookingFormDTO) { f.Name = strings.Repeat("x", 255) }},
		{"Phone minimum", func(f *dto.BookingFormDTO) { f.Phone = "123456" }},
		{"Phone maximum", func(f *dto.BookingFormDTO) { f.Phone = strings.Repeat("9", 40) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newBookingTestService(t)

			form := validBookingForm()
			tt.mutate(form)
			result, err := svc.Submit(context.Background(), form, nil, "client-1", "de")
			if err != nil {
				t.Fatalf("Submit() returned error: %v", err)
			}
			if result.Booking == nil {
				t.Fatal("Expected booking in result")
			}
		})
	}
}

func TestBookingSubmit_Honeypot(t *testing.T) {
	svc, repo, sender, limiter := newBookingTestService(t)

	form := validBookingForm()
	form.Website = "https://spam.example.com"

	result, err := svc.Submit(context.Background(), form, nil, "client-1", "de")
	if err != nil {
		t.Fatalf("Honeypot submission must not error: %v", err)
	}
	if result.Booking != nil {
		t.Error("Honeypot submission must not produce a booking")
	}
	if repo.CreateCalls != 0 {
		t.Errorf("Honeypot submission must not persist, got %d Create calls", repo.CreateCalls)
	}
	if sender.SendCalls != 0 {
		t.Errorf("Honeypot submission must not mail, got %d sends", sender.SendCalls)
	}
	if limiter.AllowCalls != 0 {
		t.Errorf("Honeypot submission must not consume limiter budget, got %d calls", limiter.AllowCalls)
	}
}

func TestBookingSubmit_RateLimited(t *testing.T) {
	svc, repo, sender, limiter := newBookingTestService(t)
	limiter.AllowResult = false

	_, err := svc.Submit(context.Background(), validBookingForm(), nil, "client-1", "de")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Expected ErrRateLimited, got %v", err)
	}
	if repo.CreateCalls != 0 {
		t.Errorf("Rate-limited submission must not persist, got %d Create calls", repo.CreateCalls)
	}
	if sender.SendCalls != 0 {
		t.Errorf("Rate-limited submission must not mail, got %d sends", sender.SendCalls)
	}
}

func TestBookingSubmit_MailFailureKeepsBooking(t *testing.T) {
	svc, repo, sender, _ := newBookingTestService(t)
	sender.SendError = errors.New("smtp connection refused")

	result, err := svc.Submit(context.Background(), validBookingForm(), nil, "client-1", "de")
	if err != nil {
		t.Fatalf("Mail failure must not surface as submission error: %v", err)
	}
	if result.Booking == nil {
		t.Fatal("Expected booking despite mail failure")
	}
	if result.MailError == nil {
		t.Fatal("Expected mail error in result")
	}

	// The booking stays persisted, mail failure never rolls it back
	if repo.CreateCalls != 1 {
		t.Errorf("Expected 1 Create call, got %d", repo.CreateCalls)
	}
	if _, ok := repo.Bookings[result.Booking.ConfirmationToken]; !ok {
		t.Error("Booking missing from store after mail failure")
	}
}

func TestBookingSubmit_DBError(t *testing.T) {
	svc, repo, sender, _ := newBookingTestService(t)
	repo.CreateError = errors.New("disk full")

	_, err := svc.Submit(context.Background(), validBookingForm(), nil, "client-1", "de")
	if err == nil {
		t.Fatal("Expected error on store failure")
	}
	if sender.SendCalls != 0 {
		t.Errorf("Store failure must not mail, got %d sends", sender.SendCalls)
	}
}

// waitForOwnerMail polls until the async owner notification lands or the
// deadline passes.
func waitForOwnerMail(t *testing.T, sender *mocks.MockMailSender, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sender.SentTo(testOwnerEmail)) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Owner mail count did not reach %d, got %d", want, len(sender.SentTo(testOwnerEmail)))
}

func TestBookingConfirm_Lifecycle(t *testing.T) {
	svc, _, sender, _ := newBookingTestService(t)

	result, err := svc.Submit(context.Background(), validBookingForm(), nil, "client-1", "de")
	if err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}
	token := result.Booking.ConfirmationToken

	status, err := svc.Confirm(context.Background(), token)
	if err != nil {
		t.Fatalf("Confirm() returned error: %v", err)
	}
	if status != domain.ConfirmStatusConfirmed {
		t.Fatalf("Expected confirmed, got %s", status)
	}

	waitForOwnerMail(t, sender, 1)

	// Second click reports already_confirmed and sends nothing new
	status, err = svc.Confirm(context.Background(), token)
	if err != nil {
		t.Fatalf("Second Confirm() returned error: %v", err)
	}
	if status != domain.ConfirmStatusAlreadyConfirmed {
		t.Fatalf("Expected already_confirmed, got %s", status)
	}

	time.Sleep(50 * time.Millisecond)
	if got := len(sender.SentTo(testOwnerEmail)); got != 1 {
		t.Errorf("Expected exactly 1 owner notification, got %d", got)
	}
}

func TestBookingConfirm_InvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"Empty token", ""},
		{"Too short", "abc123"},
		{"Uppercase hex", strings.Repeat("A", 64)},
		{"Non-hex characters", strings.Repeat("zz", 32)},
		{"Unknown but well-formed", strings.Repeat("ab", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, sender, _ := newBookingTestService(t)

			status, err := svc.Confirm(context.Background(), tt.token)
			if err != nil {
				t.Fatalf("Confirm() returned error: %v", err)
			}
			if status != domain.ConfirmStatusInvalid {
				t.Errorf("Expected invalid, got %s", status)
			}
			if sender.SendCalls != 0 {
				t.Errorf("Invalid token must not mail, got %d sends", sender.SendCalls)
			}
		})
	}
}

func TestBookingConfirm_MalformedTokenSkipsStore(t *testing.T) {
	svc, repo, _, _ := newBookingTestService(t)

	_, err := svc.Confirm(context.Background(), "<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Confirm() returned error: %v", err)
	}
	if repo.ConfirmCalls != 0 {
		t.Errorf("Malformed token must not reach the store, got %d calls", repo.ConfirmCalls)
	}
}

func TestBookingConfirm_ConcurrentClicksNotifyOnce(t *testing.T) {
	svc, _, sender, _ := newBookingTestService(t)

	result, err := svc.Submit(context.Background(), validBookingForm(), nil, "client-1", "de")
	if err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}
	token := result.Booking.ConfirmationToken

	const clicks = 10
	statuses := make([]domain.ConfirmStatus, clicks)
	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status, err := svc.Confirm(context.Background(), token)
			if err != nil {
				t.Errorf("Confirm() returned error: %v", err)
			}
			statuses[i] = status
		}(i)
	}
	wg.Wait()

	confirmed := 0
	for _, status := range statuses {
		switch status {
		case domain.ConfirmStatusConfirmed:
			confirmed++
		case domain.ConfirmStatusAlreadyConfirmed:
		default:
			t.Errorf("Unexpected status %s", status)
		}
	}
	if confirmed != 1 {
		t.Fatalf("Expected exactly 1 click to observe the confirm edge, got %d", confirmed)
	}

	waitForOwnerMail(t, sender, 1)
	time.Sleep(50 * time.Millisecond)
	if got := len(sender.SentTo(testOwnerEmail)); got != 1 {
		t.Errorf("Expected exactly 1 owner notification, got %d", got)
	}
}

func TestBookingSubmit_TokenCollisionRetries(t *testing.T) {
	svc, repo, _, _ := newBookingTestService(t)

	first, err := svc.Submit(context.Background(), validBookingForm(), nil, "client-1", "de")
	if err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	// Force the next generated token to collide with the stored one, then
	// recover: the deterministic reader yields the same bytes once before
	// falling back to fresh ones.
	svc.random = &collidingReader{collideWith: first.Booking.ConfirmationToken}

	result, err := svc.Submit(context.Background(), validBookingForm(), nil, "client-2", "de")
	if err != nil {
		t.Fatalf("Submit() after collision returned error: %v", err)
	}
	if result.Booking.ConfirmationToken == first.Booking.ConfirmationToken {
		t.Error("Collision was not resolved with a fresh token")
	}
	if repo.CreateCalls != 3 { // 1 initial + 1 collision + 1 retry
		t.Errorf("Expected 3 Create calls, got %d", repo.CreateCalls)
	}
}

// collidingReader replays the bytes of an existing token once, then switches
// to a distinct constant pattern.
type collidingReader struct {
	collideWith string
	calls       int
}

func (r *collidingReader) Read(p []byte) (int, error) {
	r.calls++
	if r.calls == 1 {
		raw := make([]byte, len(p))
		fmt.Sscanf(r.collideWith, "%x", &raw)
		copy(p, raw)
		return len(p), nil
	}
	for i := range p {
		p[i] = 0x5a
	}
	return len(p), nil
}
