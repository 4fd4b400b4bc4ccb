package postgres

import (
	"context"
	"errors"
	"fmt"

	"ewha-quiz-service/internal/app"
	"ewha-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserStore implements app.UserStore on the users table.
type UserStore struct {
	pool *pgxpool.Pool // nil inside a transaction
	q    querier
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool, q: pool}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	err := s.q.QueryRow(ctx,
		`INSERT INTO users (email, password, nickname, is_verified)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		user.Email, user.PasswordHash, user.Nickname, user.Verified,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := s.q.QueryRow(ctx,
		`SELECT id, email, password, nickname, is_verified, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nickname, &u.Verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) ExistsByEmailOrNickname(ctx context.Context, email, nickname string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR nickname = $2)`,
		email, nickname,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (s *UserStore) MarkVerified(ctx context.Context, userID int64) error {
	tag, err := s.q.Exec(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) WithTx(ctx context.Context, fn func(tx app.UserStore) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		return fn(&UserStore{q: tx})
	})
}
