package domain

import "time"

// User is a registered quiz participant.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Nickname     string
	Verified     bool
	CreatedAt    time.Time
}

// Submission is one scored quiz attempt. It is never updated after insertion.
type Submission struct {
	ID          int64
	UserID      int64
	Score       int
	Duration    int // seconds
	Results     []QuestionResult
	SubmittedAt time.Time
}

// SubmissionRecord is a submission joined with the identity of its author, as read
// by the leaderboard.
type SubmissionRecord struct {
	SubmissionID int64
	UserID       int64
	Nickname     string
	Score        int
	Duration     int
	SubmittedAt  time.Time
}

// LeaderboardUser is the public identity shown next to a leaderboard row.
type LeaderboardUser struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

// LeaderboardEntry is a user's best submission. Computed per request, never stored.
type LeaderboardEntry struct {
	SubmissionID int64           `json:"id"`
	User         LeaderboardUser `json:"user"`
	Score        int             `json:"score"`
	Duration     int             `json:"duration"`
	SubmittedAt  time.Time       `json:"created_at"`
}

// QuestionResult summarizes the grading of a single answer.
type QuestionResult struct {
	Question  int  `json:"question"`
	IsCorrect bool `json:"isCorrect"`
}

// Question is a free-text question; any of Answers is accepted.
type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Hint    string   `json:"hint" yaml:"hint"`
	Answers []string `json:"answers" yaml:"answers"`
}

// QuestionHint is the client-facing view of a question.
type QuestionHint struct {
	Hint string `json:"hint"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	Questions []Question `json:"questions" yaml:"questions"`
}
