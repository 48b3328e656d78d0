package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/ports"
	"github.com/net-idea/huette9/internal/repository/db"
)

var _ ports.BookingRepository = (*MockBookingRepository)(nil)

// MockBookingRepository is a mock implementation of ports.BookingRepository for testing
type MockBookingRepository struct {
	mu sync.Mutex

	// Mock data storage
	Bookings map[string]*domain.BookingRequest // keyed by confirmation token

	// Mock behavior flags
	CreateError  error
	GetError     error
	ConfirmError error
	ListError    error

	// Call tracking
	CreateCalls  int
	GetCalls     int
	ConfirmCalls int
	ListCalls    int

	nextID int64
}

// NewMockBookingRepository creates a new mock booking repository
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		Bookings: make(map[string]*domain.BookingRequest),
	}
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.BookingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}

	if _, exists := m.Bookings[booking.ConfirmationToken]; exists {
		return db.ErrDuplicateToken
	}

	m.nextID++
	booking.ID = m.nextID
	stored := *booking
	m.Bookings[booking.ConfirmationToken] = &stored
	return nil
}

func (m *MockBookingRepository) GetByToken(ctx context.Context, token string) (*domain.BookingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.GetError != nil {
		return nil, m.GetError
	}

	booking, exists := m.Bookings[token]
	if !exists {
		return nil, db.ErrNoRecord
	}
	copied := *booking
	return &copied, nil
}

// ConfirmIfPending mirrors the store-level compare-and-set: the mutex makes
// the check and the flip one atomic step, like the conditional UPDATE it
// stands in for.
func (m *MockBookingRepository) ConfirmIfPending(ctx context.Context, token string, at time.Time) (domain.ConfirmStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConfirmCalls++
	if m.ConfirmError != nil {
		return domain.ConfirmStatusInvalid, m.ConfirmError
	}

	booking, exists := m.Bookings[token]
	if !exists {
		return domain.ConfirmStatusInvalid, nil
	}
	if booking.IsConfirmed {
		return domain.ConfirmStatusAlreadyConfirmed, nil
	}

	booking.Confirm(at)
	return domain.ConfirmStatusConfirmed, nil
}

func (m *MockBookingRepository) List(ctx context.Context, offset, limit int) ([]*domain.BookingRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListError != nil {
		return nil, 0, m.ListError
	}

	var bookings []*domain.BookingRequest
	for _, b := range m.Bookings {
		copied := *b
		bookings = append(bookings, &copied)
	}
	return bookings, len(bookings), nil
}
