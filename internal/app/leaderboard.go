package app

import (
	"fmt"
	"sort"

	"ewha-quiz-service/internal/domain"
)

// LeaderboardSize is the number of users shown on the public leaderboard.
const LeaderboardSize = 100

// BuildLeaderboard reduces records to each user's best submission, ranks them
// and returns at most limit entries, best first.
//
// Rank order is score desc, duration asc, submitted_at asc. When two records are
// equal on all three, the one read first wins, so repeated calls over the same
// input produce the same output. The input slice is not modified.
func BuildLeaderboard(records []domain.SubmissionRecord, limit int) ([]domain.LeaderboardEntry, error) {
	best := make([]domain.SubmissionRecord, 0, len(records))
	byUser := make(map[int64]int, len(records))

	for _, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, err
		}
		idx, seen := byUser[rec.UserID]
		if !seen {
			byUser[rec.UserID] = len(best)
			best = append(best, rec)
			continue
		}
		if ranksBefore(rec, best[idx]) {
			best[idx] = rec
		}
	}

	sort.SliceStable(best, func(i, j int) bool {
		return ranksBefore(best[i], best[j])
	})

	if limit >= 0 && len(best) > limit {
		best = best[:limit]
	}

	entries := make([]domain.LeaderboardEntry, 0, len(best))
	for _, rec := range best {
		entries = append(entries, domain.LeaderboardEntry{
			SubmissionID: rec.SubmissionID,
			User: domain.LeaderboardUser{
				ID:       rec.UserID,
				Nickname: rec.Nickname,
			},
			Score:       rec.Score,
			Duration:    rec.Duration,
			SubmittedAt: rec.SubmittedAt,
		})
	}
	return entries, nil
}

// ranksBefore reports whether a strictly outranks b.
func ranksBefore(a, b domain.SubmissionRecord) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Duration != b.Duration {
		return a.Duration < b.Duration
	}
	return a.SubmittedAt.Before(b.SubmittedAt)
}

func validateRecord(rec domain.SubmissionRecord) error {
	switch {
	case rec.UserID == 0:
		return fmt.Errorf("submission %d has no user: %w", rec.SubmissionID, domain.ErrMalformedSubmission)
	case rec.Score < 0:
		return fmt.Errorf("submission %d has negative score %d: %w", rec.SubmissionID, rec.Score, domain.ErrMalformedSubmission)
	case rec.Duration < 0:
		return fmt.Errorf("submission %d has negative duration %d: %w", rec.SubmissionID, rec.Duration, domain.ErrMalformedSubmission)
	}
	return nil
}
