package app

import (
	"context"
	"strings"
	"time"
	"unicode"

	"ewha-quiz-service/internal/domain"
	"github.com/rs/zerolog/log"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SubmitLimiter throttles repeated submissions from one user. Release gives back
// a slot taken by Allow when the submission could not be stored.
type SubmitLimiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
	Release(ctx context.Context, userID int64) error
}

// Refresher is notified after a submission has been stored.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SubmitInput is a graded attempt request.
type SubmitInput struct {
	Answers  []string `json:"answers" binding:"required"`
	Duration *int     `json:"duration" binding:"required,min=0"`
}

// SubmitResult is returned to the client after grading.
type SubmitResult struct {
	Message string                  `json:"message"`
	Score   int                     `json:"score"`
	Results []domain.QuestionResult `json:"results"`
}

// QuizService contains the quiz use cases.
type QuizService struct {
	quizID      string
	quizzes     QuizRepository
	submissions SubmissionStore
	limiter     SubmitLimiter
	refresher   Refresher
	now         func() time.Time
}

func NewQuizService(quizID string, quizzes QuizRepository, submissions SubmissionStore) *QuizService {
	return &QuizService{
		quizID:      quizID,
		quizzes:     quizzes,
		submissions: submissions,
		now:         time.Now,
	}
}

// WithLimiter enables per-user submission throttling.
func (s *QuizService) WithLimiter(limiter SubmitLimiter) *QuizService {
	s.limiter = limiter
	return s
}

// WithRefresher registers a hook run asynchronously after each stored submission.
func (s *QuizService) WithRefresher(r Refresher) *QuizService {
	s.refresher = r
	return s
}

// Questions returns the hints of the active quiz, in question order.
func (s *QuizService) Questions(ctx context.Context) ([]domain.QuestionHint, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, s.quizID)
	if err != nil {
		return nil, err
	}
	hints := make([]domain.QuestionHint, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		hints = append(hints, domain.QuestionHint{Hint: q.Hint})
	}
	return hints, nil
}

// Submit grades the answers, stores a new submission and returns the outcome.
// Every call creates a new record; earlier attempts are kept.
func (s *QuizService) Submit(ctx context.Context, userID int64, input SubmitInput) (SubmitResult, error) {
	if input.Duration == nil || *input.Duration < 0 {
		return SubmitResult{}, domain.ErrInvalidAnswers
	}

	quiz, err := s.quizzes.GetQuiz(ctx, s.quizID)
	if err != nil {
		return SubmitResult{}, err
	}
	if len(input.Answers) != len(quiz.Questions) {
		return SubmitResult{}, domain.ErrInvalidAnswers
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			return SubmitResult{}, err
		}
		if !ok {
			return SubmitResult{}, domain.ErrRateLimited
		}
	}

	score, results := gradeAnswers(quiz, input.Answers)
	submission := &domain.Submission{
		UserID:      userID,
		Score:       score,
		Duration:    *input.Duration,
		Results:     results,
		SubmittedAt: s.now(),
	}
	if err := s.submissions.CreateSubmission(ctx, submission); err != nil {
		if s.limiter != nil {
			if relErr := s.limiter.Release(ctx, userID); relErr != nil {
				log.Warn().Err(relErr).Int64("user_id", userID).Msg("release submit limit failed")
			}
		}
		return SubmitResult{}, err
	}

	if s.refresher != nil {
		go func() {
			refreshCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.refresher.Refresh(refreshCtx); err != nil {
				log.Warn().Err(err).Msg("leaderboard refresh failed")
			}
		}()
	}

	return SubmitResult{Message: "submitted", Score: score, Results: results}, nil
}

// gradeAnswers scores answers positionally against the quiz questions.
func gradeAnswers(quiz domain.Quiz, answers []string) (int, []domain.QuestionResult) {
	score := 0
	results := make([]domain.QuestionResult, 0, len(answers))
	for i, answer := range answers {
		correct := matchesAny(answer, quiz.Questions[i].Answers)
		if correct {
			score++
		}
		results = append(results, domain.QuestionResult{Question: i + 1, IsCorrect: correct})
	}
	return score, results
}

func matchesAny(answer string, accepted []string) bool {
	given := normalizeAnswer(answer)
	for _, a := range accepted {
		if normalizeAnswer(a) == given {
			return true
		}
	}
	return false
}

// normalizeAnswer lower-cases and strips all whitespace.
func normalizeAnswer(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
