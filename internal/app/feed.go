package app

import (
	"context"
	"sync"

	"ewha-quiz-service/internal/domain"
)

// LeaderboardSource computes the current ranking.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// LeaderboardFeed fans out leaderboard snapshots to live subscribers. It holds no
// ranking state of its own: each refresh asks the source again.
type LeaderboardFeed struct {
	source LeaderboardSource

	// seq orders snapshot computation and delivery: seeding a new subscriber and
	// every refresh run one at a time, so the last snapshot sent is the newest.
	seq sync.Mutex

	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func NewLeaderboardFeed(source LeaderboardSource) *LeaderboardFeed {
	return &LeaderboardFeed{
		source:      source,
		subscribers: make(map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// Subscribe returns a channel seeded with the current leaderboard that receives a
// new snapshot after every refresh. The caller must invoke cancel to avoid leaks.
func (f *LeaderboardFeed) Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error) {
	f.seq.Lock()
	defer f.seq.Unlock()

	initial, err := f.source.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.LeaderboardEntry, 8)
	ch <- initial

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel, nil
}

// Refresh recomputes the leaderboard and pushes it to subscribers. It does nothing
// when nobody is listening.
func (f *LeaderboardFeed) Refresh(ctx context.Context) error {
	f.seq.Lock()
	defer f.seq.Unlock()

	if f.Subscribers() == 0 {
		return nil
	}
	entries, err := f.source.Leaderboard(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- entries:
		default:
			// slow reader: replace its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
	return nil
}

// Subscribers reports how many listeners are attached.
func (f *LeaderboardFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
