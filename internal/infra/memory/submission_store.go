package memory

import (
	"context"
	"sync"

	"ewha-quiz-service/internal/domain"
)

// SubmissionStore keeps submissions in insertion order and joins them with a
// UserStore on read.
type SubmissionStore struct {
	users *UserStore

	mu          sync.RWMutex
	nextID      int64
	submissions []domain.Submission
}

func NewSubmissionStore(users *UserStore) *SubmissionStore {
	return &SubmissionStore{users: users}
}

func (s *SubmissionStore) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	if _, err := s.users.FindByID(ctx, submission.UserID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	submission.ID = s.nextID
	s.submissions = append(s.submissions, *submission)
	return nil
}

func (s *SubmissionStore) ListSubmissionRecords(ctx context.Context) ([]domain.SubmissionRecord, error) {
	s.mu.RLock()
	submissions := make([]domain.Submission, len(s.submissions))
	copy(submissions, s.submissions)
	s.mu.RUnlock()

	records := make([]domain.SubmissionRecord, 0, len(submissions))
	for _, sub := range submissions {
		user, err := s.users.FindByID(ctx, sub.UserID)
		if err != nil {
			// rows whose user is gone drop out of the join, as with ON DELETE CASCADE
			continue
		}
		records = append(records, domain.SubmissionRecord{
			SubmissionID: sub.ID,
			UserID:       sub.UserID,
			Nickname:     user.Nickname,
			Score:        sub.Score,
			Duration:     sub.Duration,
			SubmittedAt:  sub.SubmittedAt,
		})
	}
	return records, nil
}
