package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/handler/dto"
	pgRepo "github.com/yourusername/millionaire-api/internal/repository/postgres"
	"github.com/yourusername/millionaire-api/internal/service"
	"github.com/yourusername/millionaire-api/internal/service/gameengine"
)

func newPurgeGamesCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge-games",
		Short: "Удалить завершённые игры старше заданного срока",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, closeFn, err := openGorm(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			users := pgRepo.NewUserRepo(db)
			games := pgRepo.NewGameRepo(db, users)
			before := time.Now().Add(-olderThan)
			deleted, err := games.PurgeFinishedBefore(cmd.Context(), before)
			if err != nil {
				return err
			}
			log.Printf("[dbtool] Удалено игр, завершённых до %s: %d", before.Format(time.RFC3339), deleted)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "age of finished games to delete")
	return cmd
}

func newImportQuestionsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-questions",
		Short: "Загрузить вопросы из JSON-файла в банк",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			var req dto.BulkCreateQuestionsRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			questions := make([]entity.Question, 0, len(req.Questions))
			for _, q := range req.Questions {
				questions = append(questions, q.ToEntity())
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, closeFn, err := openGorm(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			questionService := service.NewQuestionService(pgRepo.NewQuestionRepo(db), gameengine.DefaultRules())
			created, err := questionService.CreateQuestions(cmd.Context(), questions)
			if err != nil {
				return err
			}
			stats, err := questionService.Stats(cmd.Context())
			if err != nil {
				return err
			}
			log.Printf("[dbtool] Загружено вопросов: %d, всего в банке: %d, банк готов: %t", created, stats.Total, stats.Ready)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "questions.json", "JSON file with {\"questions\": [...]}")
	return cmd
}
