package repository

import (
	"context"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	CreateBatch(ctx context.Context, questions []entity.Question) error
	// GetRandomByLevel возвращает случайный вопрос уровня или apperrors.ErrNotFound
	GetRandomByLevel(ctx context.Context, level int) (*entity.Question, error)
	// CountByLevel возвращает количество вопросов на каждом уровне
	CountByLevel(ctx context.Context) (map[int]int64, error)
}
