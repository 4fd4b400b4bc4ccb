package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ewha-quiz-service/internal/app"
	"ewha-quiz-service/internal/config"
	"ewha-quiz-service/internal/infra/mail"
	"ewha-quiz-service/internal/infra/memory"
	pgstore "ewha-quiz-service/internal/infra/postgres"
	redisstore "ewha-quiz-service/internal/infra/redis"
	"ewha-quiz-service/internal/logging"
	transport "ewha-quiz-service/internal/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) must be set")
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "3001"
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	loader := pgstore.NewQuizLoader(pool)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	cooldown := config.TTLDuration(cfg.Quiz.SubmitCooldown, 5*time.Second)

	var quizRepo app.QuizRepository
	var limiter app.SubmitLimiter
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
		limiter = redisstore.NewSubmitLimiter(redisClient, cooldown)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		limiter = memory.NewSubmitLimiter(cooldown)
	}

	users := pgstore.NewUserStore(pool)
	submissions := pgstore.NewSubmissionStore(pool)

	tokens := app.NewTokenIssuer(
		cfg.Auth.JWTSecret,
		config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour),
		config.TTLDuration(cfg.Auth.VerifyTTL, time.Hour),
	)
	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	authSvc := app.NewAuthService(users, mailer, tokens, app.AuthConfig{
		AllowedEmailDomains:     cfg.Auth.AllowedEmailDomains,
		RegisterSecret:          cfg.Auth.RegisterSecret,
		BcryptCost:              cfg.Auth.BcryptCost,
		VerifyBaseURL:           cfg.Mail.VerifyBaseURL,
		AutoVerifyOnMailFailure: cfg.Mail.AutoVerifyOnFailure,
	})

	leaderboardSvc := app.NewLeaderboardService(submissions)
	feed := app.NewLeaderboardFeed(leaderboardSvc)
	quizSvc := app.NewQuizService(cfg.Quiz.ID, quizRepo, submissions).
		WithLimiter(limiter).
		WithRefresher(feed)

	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(transport.Deps{
		Auth:           authSvc,
		Quiz:           quizSvc,
		Leaderboard:    leaderboardSvc,
		Feed:           feed,
		DB:             pgstore.NewHealth(pool),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
