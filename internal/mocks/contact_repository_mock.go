package mocks

import (
	"context"
	"sync"

	"github.com/net-idea/huette9/internal/domain"
	"github.com/net-idea/huette9/internal/ports"
)

var _ ports.ContactRepository = (*MockContactRepository)(nil)

// MockContactRepository is a mock implementation of ports.ContactRepository for testing
type MockContactRepository struct {
	mu sync.Mutex

	// Mock data storage
	Messages []*domain.ContactMessage

	// Mock behavior flags
	CreateError error
	ListError   error

	// Call tracking
	CreateCalls int
	ListCalls   int
}

// NewMockContactRepository creates a new mock contact repository
func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{}
}

func (m *MockContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}

	msg.ID = int64(len(m.Messages) + 1)
	stored := *msg
	m.Messages = append(m.Messages, &stored)
	return nil
}

func (m *MockContactRepository) List(ctx context.Context, offset, limit int) ([]*domain.ContactMessage, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListError != nil {
		return nil, 0, m.ListError
	}

	out := make([]*domain.ContactMessage, 0, len(m.Messages))
	for _, msg := range m.Messages {
		copied := *msg
		out = append(out, &copied)
	}
	return out, len(out), nil
}
