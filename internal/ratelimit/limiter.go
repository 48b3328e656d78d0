// Package ratelimit provides a keyed token-bucket limiter shared by the HTTP
// middleware and the form submission services.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/net-idea/huette9/internal/ports"
	"golang.org/x/time/rate"
)

var _ ports.SubmissionLimiter = (*Limiter)(nil)

// Limiter manages rate limiters for visitors keyed by an opaque identifier
// (in practice a hashed client address). It uses a map to store a `visitor`
// object for each unique key.
type Limiter struct {
	visitors map[string]*visitor // Map of visitors, keyed by a unique identifier.
	mu       sync.RWMutex        // Protects concurrent access to the visitors map.
	rate     rate.Limit          // The number of requests allowed per second.
	burst    int                 // The maximum burst of requests allowed.
	ctx      context.Context     // Context for graceful shutdown of the cleanup goroutine.
	cancel   context.CancelFunc  // Cancel function to stop the cleanup goroutine.
}

// visitor pairs a token bucket with the time it was last used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates and returns a new Limiter.
// It initializes the visitors map and starts a background goroutine to clean
// up inactive visitors periodically.
//
// Parameters:
//   - ctx: Context for graceful shutdown of the cleanup goroutine.
//   - rps: Requests per second allowed for each visitor.
//   - burst: The maximum burst of requests allowed.
func NewLimiter(ctx context.Context, rps float64, burst int) *Limiter {
	cleanupCtx, cancel := context.WithCancel(ctx)

	l := &Limiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
		ctx:      cleanupCtx,
		cancel:   cancel,
	}

	go l.cleanupVisitors()

	return l
}

// Stop gracefully stops the limiter's cleanup goroutine.
// Should be called during application shutdown.
func (l *Limiter) Stop() {
	l.cancel()
}

// Allow reports whether the visitor behind the key may proceed, consuming one
// token when it may. Rejections are immediate; there is no queueing.
func (l *Limiter) Allow(key string) bool {
	return l.getVisitor(key).Allow()
}

// getVisitor retrieves or creates the rate limiter for a given key.
// The `lastSeen` time for the visitor is updated on each call.
func (l *Limiter) getVisitor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(l.rate, l.burst)
		l.visitors[key] = &visitor{
			limiter:  limiter,
			lastSeen: time.Now(),
		}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors periodically removes inactive visitors from the map so it
// does not grow indefinitely. A visitor is considered inactive after 3
// minutes without a request.
//
// The goroutine respects context cancellation for graceful shutdown.
func (l *Limiter) cleanupVisitors() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			for key, v := range l.visitors {
				if time.Since(v.lastSeen) > 3*time.Minute {
					delete(l.visitors, key)
				}
			}
			l.mu.Unlock()

		case <-l.ctx.Done():
			return
		}
	}
}
