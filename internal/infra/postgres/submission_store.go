package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"ewha-quiz-service/internal/domain"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SubmissionStore implements app.SubmissionStore on the quiz_results table.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	answers, err := json.Marshal(submission.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO quiz_results (user_id, score, duration, answers, submitted_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		submission.UserID, submission.Score, submission.Duration, string(answers), submission.SubmittedAt,
	).Scan(&submission.ID)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListSubmissionRecords reads every submission with its author. A row with a
// NULL score or duration aborts the read with domain.ErrMalformedSubmission.
func (s *SubmissionStore) ListSubmissionRecords(ctx context.Context) ([]domain.SubmissionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT qr.id, u.id, u.nickname, qr.score, qr.duration, qr.submitted_at
		 FROM quiz_results qr
		 JOIN users u ON u.id = qr.user_id`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var records []domain.SubmissionRecord
	for rows.Next() {
		var (
			rec             domain.SubmissionRecord
			score, duration pgtype.Int4
		)
		if err := rows.Scan(&rec.SubmissionID, &rec.UserID, &rec.Nickname, &score, &duration, &rec.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := setScoreAndDuration(&rec, score, duration); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	return records, nil
}

// setScoreAndDuration copies the scanned columns into rec. NULL in either column
// makes the row malformed.
func setScoreAndDuration(rec *domain.SubmissionRecord, score, duration pgtype.Int4) error {
	if score.Status != pgtype.Present || duration.Status != pgtype.Present {
		return fmt.Errorf("submission %d: %w", rec.SubmissionID, domain.ErrMalformedSubmission)
	}
	rec.Score = int(score.Int)
	rec.Duration = int(duration.Int)
	return nil
}
