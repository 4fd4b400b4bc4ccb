package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ewha-quiz-service/internal/app"
	"ewha-quiz-service/internal/domain"
	pgstore "ewha-quiz-service/internal/infra/postgres"
	pgmigrations "ewha-quiz-service/internal/infra/postgres/migrations"
	infraredis "ewha-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"golang.org/x/crypto/bcrypt"
)

func TestQuizFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewQuizLoader(pool)
	if err := loader.SaveQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("save quiz: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	users := pgstore.NewUserStore(pool)
	submissions := pgstore.NewSubmissionStore(pool)
	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute)
	leaderboard := app.NewLeaderboardService(submissions)
	quizSvc := app.NewQuizService("main", quizRepo, submissions).
		WithLimiter(infraredis.NewSubmitLimiter(redisClient, time.Minute))

	auth := app.NewAuthService(users, failingMailer{}, app.NewTokenIssuer("it-secret", time.Hour, time.Hour), app.AuthConfig{
		AllowedEmailDomains:     []string{"@ewhain.net"},
		RegisterSecret:          "pear",
		BcryptCost:              bcrypt.MinCost,
		VerifyBaseURL:           "http://localhost/api/users/verify",
		AutoVerifyOnMailFailure: true,
	})
	for _, nick := range []string{"alice", "bob"} {
		err := auth.Register(ctx, app.RegisterInput{
			Email:      nick + "@ewhain.net",
			Password:   "pw",
			Nickname:   nick,
			SecretWord: "pear",
		})
		if err != nil {
			t.Fatalf("register %s: %v", nick, err)
		}
	}
	alice, err := users.FindByEmail(ctx, "alice@ewhain.net")
	if err != nil {
		t.Fatalf("find alice: %v", err)
	}
	bob, err := users.FindByEmail(ctx, "bob@ewhain.net")
	if err != nil {
		t.Fatalf("find bob: %v", err)
	}
	if !alice.Verified {
		t.Fatalf("expected account activated after mail failure")
	}

	res, err := quizSvc.Submit(ctx, alice.ID, app.SubmitInput{Answers: []string{"4", "x"}, Duration: intPtr(30)})
	if err != nil {
		t.Fatalf("submit alice: %v", err)
	}
	if res.Score != 1 {
		t.Fatalf("expected alice score 1, got %d", res.Score)
	}
	if _, err := quizSvc.Submit(ctx, alice.ID, app.SubmitInput{Answers: []string{"4", "seoul"}, Duration: intPtr(5)}); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limit on quick resubmit, got %v", err)
	}
	if _, err := quizSvc.Submit(ctx, bob.ID, app.SubmitInput{Answers: []string{"four", "Seoul"}, Duration: intPtr(50)}); err != nil {
		t.Fatalf("submit bob: %v", err)
	}

	entries, err := leaderboard.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].User.Nickname != "bob" || entries[1].User.Nickname != "alice" {
		t.Fatalf("expected bob then alice, got %+v", entries)
	}
	if entries[0].Score != 2 || entries[0].Duration != 50 {
		t.Fatalf("unexpected bob entry: %+v", entries[0])
	}
}

func TestUserStoreUniqueAndRollback(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, cleanup := startPostgres(t, ctx)
	defer cleanup()
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	users := pgstore.NewUserStore(pool)

	if err := users.Create(ctx, &domain.User{Email: "a@ewhain.net", PasswordHash: "x", Nickname: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := users.Create(ctx, &domain.User{Email: "b@ewhain.net", PasswordHash: "x", Nickname: "a"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on nickname, got %v", err)
	}

	boom := errors.New("abort")
	err = users.WithTx(ctx, func(tx app.UserStore) error {
		if err := tx.Create(ctx, &domain.User{Email: "c@ewhain.net", PasswordHash: "x", Nickname: "c"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected tx error, got %v", err)
	}
	if _, err := users.FindByEmail(ctx, "c@ewhain.net"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected rolled back user, got %v", err)
	}

	if err := users.MarkVerified(ctx, 9999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := pgstore.NewQuizLoader(pool).LoadQuiz(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}

	dbTime, err := pgstore.NewHealth(pool).Now(ctx)
	if err != nil || dbTime.IsZero() {
		t.Fatalf("health check: %v %v", dbTime, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "main",
		Questions: []domain.Question{
			{ID: "q1", Hint: "2 + 2?", Answers: []string{"4", "four"}},
			{ID: "q2", Hint: "Capital of Korea?", Answers: []string{"Seoul", "서울"}},
		},
	}
}

type failingMailer struct{}

func (failingMailer) SendVerification(context.Context, string, string) error {
	return errors.New("smtp disabled in tests")
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

func intPtr(v int) *int { return &v }
