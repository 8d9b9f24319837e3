package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/domain/repository"
	"github.com/yourusername/millionaire-api/internal/handler/dto"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
	"github.com/yourusername/millionaire-api/internal/service/gameengine"
)

// QuestionService управляет банком вопросов
type QuestionService struct {
	questionRepo repository.QuestionRepository
	rules        *gameengine.Rules
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(questionRepo repository.QuestionRepository, rules *gameengine.Rules) *QuestionService {
	if rules == nil {
		rules = gameengine.DefaultRules()
	}
	return &QuestionService{questionRepo: questionRepo, rules: rules}
}

// CreateQuestions проверяет и сохраняет пакет вопросов. Пакет сохраняется целиком или не сохраняется.
func (s *QuestionService) CreateQuestions(ctx context.Context, questions []entity.Question) (int, error) {
	if len(questions) == 0 {
		return 0, fmt.Errorf("%w: no questions", apperrors.ErrValidation)
	}
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return 0, fmt.Errorf("question #%d: %w", i+1, err)
		}
		if questions[i].Level > s.rules.MaxLevel() {
			return 0, fmt.Errorf("question #%d: %w: level must be in [0, %d]", i+1, apperrors.ErrValidation, s.rules.MaxLevel())
		}
	}

	if err := s.questionRepo.CreateBatch(ctx, questions); err != nil {
		log.Printf("[QuestionService] Ошибка сохранения %d вопросов: %v", len(questions), err)
		return 0, err
	}
	return len(questions), nil
}

// Stats возвращает количество вопросов на каждом уровне игры
func (s *QuestionService) Stats(ctx context.Context) (*dto.QuestionStatsResponse, error) {
	counts, err := s.questionRepo.CountByLevel(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.QuestionStatsResponse{
		Levels: make([]dto.LevelStatDTO, 0, s.rules.LevelsCount()),
		Ready:  true,
	}
	for level := 0; level < s.rules.LevelsCount(); level++ {
		count := counts[level]
		resp.Levels = append(resp.Levels, dto.LevelStatDTO{
			Level: level,
			Prize: s.rules.PrizeAt(level),
			Count: count,
		})
		resp.Total += count
		if count == 0 {
			resp.Ready = false
		}
	}
	return resp, nil
}
