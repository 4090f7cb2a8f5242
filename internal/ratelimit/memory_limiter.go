package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter is the in-process Limiter used when no Redis address is
// configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	log     *slog.Logger
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter returns an in-memory sliding-window limiter.
func NewMemoryLimiter(log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		log:     log,
	}
}

// Check enforces a sliding-window limit for the provided key.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	recent := trimBefore(m.windows[key], windowStart)

	allowed := len(recent) < limit
	if allowed {
		recent = append(recent, now)
	}
	m.windows[key] = recent

	remaining := limit - len(recent)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   windowStart.Add(window),
	}

	if !allowed {
		return result, ErrLimitExceeded
	}

	return result, nil
}

// RunCleanup drops windows that have seen no activity for maxAge, until ctx
// is cancelled. Keeps the map from growing with one-off senders.
func (m *MemoryLimiter) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(maxAge)
		}
	}
}

func (m *MemoryLimiter) cleanup(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, times := range m.windows {
		if len(times) == 0 || times[len(times)-1].Before(cutoff) {
			delete(m.windows, key)
			removed++
		}
	}

	if removed > 0 {
		m.log.Debug("rate limit windows cleaned", slog.Int("removed", removed))
	}
}

func trimBefore(times []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(times) && times[idx].Before(cutoff) {
		idx++
	}
	return times[idx:]
}
