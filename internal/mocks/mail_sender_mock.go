package mocks

import (
	"context"
	"sync"

	"github.com/net-idea/huette9/internal/ports"
)

var _ ports.MailSender = (*MockMailSender)(nil)

// MockMailSender is a mock implementation of ports.MailSender for testing
type MockMailSender struct {
	mu sync.Mutex

	// Sent records every delivered message in order
	Sent []ports.Message

	// Mock behavior
	SendError error
	SendFunc  func(ctx context.Context, msg ports.Message) error

	// Call tracking
	SendCalls int
}

// NewMockMailSender creates a new mock mail sender
func NewMockMailSender() *MockMailSender {
	return &MockMailSender{}
}

func (m *MockMailSender) Send(ctx context.Context, msg ports.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SendCalls++
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	if m.SendError != nil {
		return m.SendError
	}

	m.Sent = append(m.Sent, msg)
	return nil
}

// SentTo returns the messages delivered to the given address
func (m *MockMailSender) SentTo(email string) []ports.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ports.Message
	for _, msg := range m.Sent {
		if msg.To.Email == email {
			out = append(out, msg)
		}
	}
	return out
}

var _ ports.SubmissionLimiter = (*MockLimiter)(nil)

// MockLimiter is a mock implementation of ports.SubmissionLimiter for testing
type MockLimiter struct {
	mu sync.Mutex

	// AllowResult is returned unless AllowFunc is set
	AllowResult bool
	AllowFunc   func(key string) bool

	// Call tracking
	AllowCalls int
	Keys       []string
}

// NewMockLimiter creates a limiter that allows everything by default
func NewMockLimiter() *MockLimiter {
	return &MockLimiter{AllowResult: true}
}

func (m *MockLimiter) Allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AllowCalls++
	m.Keys = append(m.Keys, key)
	if m.AllowFunc != nil {
		return m.AllowFunc(key)
	}
	return m.AllowResult
}
