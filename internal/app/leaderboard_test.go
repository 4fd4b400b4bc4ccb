package app_test

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"ewha-quiz-service/internal/app"
	"ewha-quiz-service/internal/domain"
)

var base = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

func record(subID, userID int64, score, duration int, offset time.Duration) domain.SubmissionRecord {
	return domain.SubmissionRecord{
		SubmissionID: subID,
		UserID:       userID,
		Nickname:     "user-" + string(rune('A'+userID%26)),
		Score:        score,
		Duration:     duration,
		SubmittedAt:  base.Add(offset),
	}
}

func TestBuildLeaderboardReducesPerUserThenRanks(t *testing.T) {
	records := []domain.SubmissionRecord{
		record(1, 1, 10, 50, 0),
		record(2, 2, 10, 30, time.Minute),
		record(3, 1, 8, 10, 2*time.Minute),
	}

	entries, err := app.BuildLeaderboard(records, app.LeaderboardSize)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].User.ID != 2 || entries[0].Duration != 30 {
		t.Fatalf("expected U2 (duration 30) first, got %+v", entries[0])
	}
	if entries[1].User.ID != 1 || entries[1].Score != 10 || entries[1].Duration != 50 || entries[1].SubmissionID != 1 {
		t.Fatalf("expected U1 best record (score 10, duration 50), got %+v", entries[1])
	}
}

func TestBuildLeaderboardPicksShorterDurationForSameScore(t *testing.T) {
	records := []domain.SubmissionRecord{
		record(1, 7, 5, 100, 0),
		record(2, 7, 5, 80, time.Hour),
	}

	entries, err := app.BuildLeaderboard(records, app.LeaderboardSize)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entries) != 1 || entries[0].Duration != 80 || entries[0].SubmissionID != 2 {
		t.Fatalf("expected the 80s submission, got %+v", entries)
	}
}

func TestBuildLeaderboardBreaksTiesOnEarlierSubmission(t *testing.T) {
	records := []domain.SubmissionRecord{
		record(1, 1, 9, 40, 2*time.Minute),
		record(2, 2, 9, 40, time.Minute),
		record(3, 1, 9, 40, 0), // user 1 did the same earlier
	}

	entries, err := app.BuildLeaderboard(records, app.LeaderboardSize)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if entries[0].User.ID != 1 || entries[0].SubmissionID != 3 {
		t.Fatalf("expected user 1's earliest submission first, got %+v", entries[0])
	}
	if entries[1].User.ID != 2 {
		t.Fatalf("expected user 2 second, got %+v", entries[1])
	}
}

func TestBuildLeaderboardFullTiesKeepReadOrder(t *testing.T) {
	records := []domain.SubmissionRecord{
		record(10, 3, 4, 20, 0),
		record(11, 1, 4, 20, 0),
		record(12, 3, 4, 20, 0),
		record(13, 2, 4, 20, 0),
	}

	entries, err := app.BuildLeaderboard(records, app.LeaderboardSize)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	gotUsers := []int64{entries[0].User.ID, entries[1].User.ID, entries[2].User.ID}
	if !reflect.DeepEqual(gotUsers, []int64{3, 1, 2}) {
		t.Fatalf("expected read order [3 1 2], got %v", gotUsers)
	}
	if entries[0].SubmissionID != 10 {
		t.Fatalf("expected first-read submission 10 for user 3, got %d", entries[0].SubmissionID)
	}
}

func TestBuildLeaderboardEmptyInput(t *testing.T) {
	entries, err := app.BuildLeaderboard(nil, app.LeaderboardSize)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestBuildLeaderboardTruncatesToTop100(t *testing.T) {
	records := make([]domain.SubmissionRecord, 0, 150)
	for i := 0; i < 150; i++ {
		records = append(records, record(int64(i+1), int64(i+1), i, 60, 0))
	}
	rand.New(rand.NewSource(1)).Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	entries, err := app.BuildLeaderboard(records, app.LeaderboardSize)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entries) != 100 {
		t.Fatalf("expected 100 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if want := 149 - i; e.Score != want {
			t.Fatalf("rank %d: expected score %d, got %d", i+1, want, e.Score)
		}
	}
}

func TestBuildLeaderboardInvariantsOnRandomInput(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	records := make([]domain.SubmissionRecord, 0, 600)
	users := make(map[int64]struct{})
	for i := 0; i < 600; i++ {
		userID := int64(rnd.Intn(140) + 1)
		users[userID] = struct{}{}
		records = append(records, record(
			int64(i+1),
			userID,
			rnd.Intn(6),
			rnd.Intn(5)*10,
			time.Duration(rnd.Intn(4))*time.Minute,
		))
	}
	input := append([]domain.SubmissionRecord(nil), records...)

	first, err := app.BuildLeaderboard(records, app.LeaderboardSize)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := app.BuildLeaderboard(records, app.LeaderboardSize)
	if err != nil {
		t.Fatalf("build again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output on repeated calls")
	}
	if !reflect.DeepEqual(input, records) {
		t.Fatalf("input records were modified")
	}

	wantLen := len(users)
	if wantLen > app.LeaderboardSize {
		wantLen = app.LeaderboardSize
	}
	if len(first) != wantLen {
		t.Fatalf("expected %d entries, got %d", wantLen, len(first))
	}

	seen := make(map[int64]bool)
	for i, e := range first {
		if seen[e.User.ID] {
			t.Fatalf("user %d appears twice", e.User.ID)
		}
		seen[e.User.ID] = true
		if i == 0 {
			continue
		}
		a, b := first[i-1], e
		ordered := a.Score > b.Score ||
			(a.Score == b.Score && a.Duration < b.Duration) ||
			(a.Score == b.Score && a.Duration == b.Duration && !a.SubmittedAt.After(b.SubmittedAt))
		if !ordered {
			t.Fatalf("ranks %d and %d out of order: %+v then %+v", i, i+1, a, b)
		}
	}

	// every listed entry is its user's best record
	for _, e := range first {
		for _, r := range records {
			if r.UserID != e.User.ID {
				continue
			}
			better := r.Score > e.Score ||
				(r.Score == e.Score && r.Duration < e.Duration) ||
				(r.Score == e.Score && r.Duration == e.Duration && r.SubmittedAt.Before(e.SubmittedAt))
			if better {
				t.Fatalf("user %d: record %+v beats listed entry %+v", e.User.ID, r, e)
			}
		}
	}
}

func TestBuildLeaderboardRejectsMalformedRecords(t *testing.T) {
	cases := map[string]domain.SubmissionRecord{
		"negative score":    record(1, 1, -1, 10, 0),
		"negative duration": record(2, 1, 3, -5, 0),
		"missing user":      record(3, 0, 3, 5, 0),
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			records := []domain.SubmissionRecord{record(9, 2, 1, 1, 0), bad}
			entries, err := app.BuildLeaderboard(records, app.LeaderboardSize)
			if !errors.Is(err, domain.ErrMalformedSubmission) {
				t.Fatalf("expected malformed submission error, got %v", err)
			}
			if entries != nil {
				t.Fatalf("expected no partial ranking, got %+v", entries)
			}
		})
	}
}
