package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		return tx.CreateInBatches(&questions, 100).Error
	})
}

// GetRandomByLevel возвращает случайный вопрос заданного уровня
func (r *QuestionRepo) GetRandomByLevel(ctx context.Context, level int) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Where("level = ?", level).
		Order("RANDOM()").
		Take(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no question for level %d", apperrors.ErrNotFound, level)
		}
		return nil, storageError("get random question", err)
	}
	return &question, nil
}

// CountByLevel возвращает количество вопросов на каждом уровне
func (r *QuestionRepo) CountByLevel(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		Level int
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Question{}).
		Select("level, COUNT(*) AS count").
		Group("level").
		Order("level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Level] = row.Count
	}
	return counts, nil
}
