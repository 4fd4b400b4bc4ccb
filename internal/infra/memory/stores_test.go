package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ewha-quiz-service/internal/app"
	"ewha-quiz-service/internal/domain"
)

func TestUserStoreConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	if err := store.Create(ctx, &domain.User{Email: "a@ewhain.net", Nickname: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, &domain.User{Email: "a@ewhain.net", Nickname: "b"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected email conflict, got %v", err)
	}
	if err := store.Create(ctx, &domain.User{Email: "b@ewhain.net", Nickname: "a"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected nickname conflict, got %v", err)
	}
	// emails compare exactly, like the unique column; callers lower-case them
	if err := store.Create(ctx, &domain.User{Email: "A@EWHAIN.NET", Nickname: "c"}); err != nil {
		t.Fatalf("expected exact email comparison, got %v", err)
	}
	if _, err := store.FindByEmail(ctx, "A@ewhain.net"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected no match for different case, got %v", err)
	}
}

func TestUserStoreWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	boom := errors.New("mail down")

	err := store.WithTx(ctx, func(tx app.UserStore) error {
		if err := tx.Create(ctx, &domain.User{Email: "a@ewhain.net", Nickname: "a"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected tx error, got %v", err)
	}
	if _, err := store.FindByEmail(ctx, "a@ewhain.net"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected rollback, got %v", err)
	}

	user := &domain.User{Email: "a@ewhain.net", Nickname: "a"}
	if err := store.Create(ctx, user); err != nil {
		t.Fatalf("create after rollback: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("expected id sequence restored, got %d", user.ID)
	}
}

func TestUserStoreMarkVerified(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	user := &domain.User{Email: "a@ewhain.net", Nickname: "a"}
	_ = store.Create(ctx, user)

	if err := store.MarkVerified(ctx, user.ID); err != nil {
		t.Fatalf("mark verified: %v", err)
	}
	got, _ := store.FindByID(ctx, user.ID)
	if !got.Verified {
		t.Fatalf("expected verified user")
	}
	if err := store.MarkVerified(ctx, 42); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmissionStoreJoinsUsers(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore()
	user := &domain.User{Email: "a@ewhain.net", Nickname: "alice"}
	_ = users.Create(ctx, user)
	store := NewSubmissionStore(users)

	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	sub := &domain.Submission{UserID: user.ID, Score: 3, Duration: 17, SubmittedAt: at}
	if err := store.CreateSubmission(ctx, sub); err != nil {
		t.Fatalf("create submission: %v", err)
	}
	if sub.ID == 0 {
		t.Fatalf("expected id assigned")
	}
	if err := store.CreateSubmission(ctx, &domain.Submission{UserID: 99}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected unknown user rejected, got %v", err)
	}

	records, err := store.ListSubmissionRecords(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := domain.SubmissionRecord{SubmissionID: sub.ID, UserID: user.ID, Nickname: "alice", Score: 3, Duration: 17, SubmittedAt: at}
	if len(records) != 1 || records[0] != want {
		t.Fatalf("expected %+v, got %+v", want, records)
	}
}

func TestSubmitLimiterCooldown(t *testing.T) {
	ctx := context.Background()
	limiter := NewSubmitLimiter(5 * time.Second)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.clock = func() time.Time { return now }

	if ok, _ := limiter.Allow(ctx, 1); !ok {
		t.Fatalf("first submit should pass")
	}
	if ok, _ := limiter.Allow(ctx, 1); ok {
		t.Fatalf("second submit within cooldown should be blocked")
	}
	if ok, _ := limiter.Allow(ctx, 2); !ok {
		t.Fatalf("other users are not affected")
	}
	now = now.Add(5 * time.Second)
	if ok, _ := limiter.Allow(ctx, 1); !ok {
		t.Fatalf("submit after cooldown should pass")
	}

	if err := limiter.Release(ctx, 1); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := limiter.Allow(ctx, 1); !ok {
		t.Fatalf("released slot should allow an immediate retry")
	}
}
