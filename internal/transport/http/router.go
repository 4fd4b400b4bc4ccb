package http

import (
	"context"
	"time"

	"ewha-quiz-service/internal/app"
	"ewha-quiz-service/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AuthUseCases is the account API used by the handlers and auth middleware.
type AuthUseCases interface {
	Register(ctx context.Context, input app.RegisterInput) error
	Verify(ctx context.Context, token string) error
	Login(ctx context.Context, input app.LoginInput) (string, error)
	Authenticate(token string) (app.AccessClaims, error)
}

// QuizUseCases serves questions and grades submissions.
type QuizUseCases interface {
	Questions(ctx context.Context) ([]domain.QuestionHint, error)
	Submit(ctx context.Context, userID int64, input app.SubmitInput) (app.SubmitResult, error)
}

// LeaderboardReader returns the current ranking.
type LeaderboardReader interface {
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// LeaderboardSubscriber streams ranking updates.
type LeaderboardSubscriber interface {
	Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error)
}

// DBClock reports the database time; used by the connectivity check.
type DBClock interface {
	Now(ctx context.Context) (time.Time, error)
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth           AuthUseCases
	Quiz           QuizUseCases
	Leaderboard    LeaderboardReader
	Feed           LeaderboardSubscriber
	DB             DBClock
	AllowedOrigins []string
}

// NewRouter builds the gin engine with all API routes.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())
	corsConfig := cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", requestHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(d.AllowedOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		// browsers reject a wildcard origin that also allows credentials
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	system := NewSystemHandler(d.DB)
	router.GET("/", system.Root)
	router.GET("/healthz", system.Health)
	router.GET("/db-test", system.DBTest)

	users := NewUserHandler(d.Auth)
	quiz := NewQuizHandler(d.Quiz)
	leaderboard := NewLeaderboardHandler(d.Leaderboard)
	ws := NewWSHandler(d.Feed)

	api := router.Group("/api")
	{
		userGroup := api.Group("/users")
		userGroup.POST("/register", users.Register)
		userGroup.GET("/verify", users.Verify)
		userGroup.POST("/login", users.Login)

		quizGroup := api.Group("/quiz", requireAuth(d.Auth))
		quizGroup.GET("/questions", quiz.Questions)
		quizGroup.POST("/submit", quiz.Submit)

		api.GET("/leaderboard", leaderboard.GetLeaderboard)
		api.GET("/leaderboard/ws", ws.ServeWS)
	}

	return router
}
