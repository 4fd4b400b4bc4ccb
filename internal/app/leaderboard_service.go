package app

import (
	"context"
	"fmt"

	"ewha-quiz-service/internal/domain"
)

// SubmissionStore persists quiz submissions and exposes the joined view the
// leaderboard is computed from.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, submission *domain.Submission) error
	// ListSubmissionRecords returns every submission joined with its user, in no
	// particular order.
	ListSubmissionRecords(ctx context.Context) ([]domain.SubmissionRecord, error)
}

// LeaderboardService serves the public ranking. Every call recomputes from the store.
type LeaderboardService struct {
	submissions SubmissionStore
	size        int
}

func NewLeaderboardService(submissions SubmissionStore) *LeaderboardService {
	return &LeaderboardService{submissions: submissions, size: LeaderboardSize}
}

// Leaderboard returns the top entries, best first. A failed fetch is returned as
// an error rather than an empty ranking.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	records, err := s.submissions.ListSubmissionRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return BuildLeaderboard(records, s.size)
}
