package cli

import (
	"fmt"
	"os"

	"ewha-quiz-service/internal/domain"
	pgstore "ewha-quiz-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewSeedQuizCmd loads a quiz definition from YAML into Postgres.
func NewSeedQuizCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-quiz",
		Short: "Insert or replace a quiz from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			quiz, err := readQuizFile(file)
			if err != nil {
				return err
			}
			if quiz.ID == "" {
				quiz.ID = cfg.Quiz.ID
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}

			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pgstore.NewQuizLoader(pool).SaveQuiz(cmd.Context(), quiz); err != nil {
				return err
			}
			log.Info().Str("quiz", quiz.ID).Int("questions", len(quiz.Questions)).Msg("quiz seeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/quiz.yaml", "quiz definition in YAML")
	return cmd
}

func readQuizFile(path string) (domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Quiz{}, err
	}
	var quiz domain.Quiz
	if err := yaml.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(quiz.Questions) == 0 {
		return domain.Quiz{}, fmt.Errorf("%s: quiz has no questions", path)
	}
	for i, q := range quiz.Questions {
		if q.Hint == "" || len(q.Answers) == 0 {
			return domain.Quiz{}, fmt.Errorf("%s: question %d needs a hint and at least one answer", path, i+1)
		}
	}
	return quiz, nil
}
