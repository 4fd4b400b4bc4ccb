package memory

import (
	"context"
	"sync"
	"time"
)

// SubmitLimiter allows one submission per user per cooldown window.
type SubmitLimiter struct {
	cooldown time.Duration
	clock    func() time.Time

	mu   sync.Mutex
	last map[int64]time.Time
}

func NewSubmitLimiter(cooldown time.Duration) *SubmitLimiter {
	return &SubmitLimiter{
		cooldown: cooldown,
		clock:    time.Now,
		last:     make(map[int64]time.Time),
	}
}

func (l *SubmitLimiter) Allow(_ context.Context, userID int64) (bool, error) {
	if l.cooldown <= 0 {
		return true, nil
	}
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.last[userID]; ok && now.Sub(last) < l.cooldown {
		return false, nil
	}
	l.last[userID] = now
	return true, nil
}

func (l *SubmitLimiter) Release(_ context.Context, userID int64) error {
	l.mu.Lock()
	delete(l.last, userID)
	l.mu.Unlock()
	return nil
}
