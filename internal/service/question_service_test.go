package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

func validBankQuestion(level int) entity.Question {
	return entity.Question{
		Level:         level,
		Text:          "Сколько будет 2+2?",
		Options:       entity.StringArray{"3", "4", "5", "6"},
		CorrectOption: 2,
	}
}

func TestQuestionService_CreateQuestions(t *testing.T) {
	repo := new(MockQuestionRepository)
	svc := NewQuestionService(repo, nil)
	ctx := context.Background()
	batch := []entity.Question{validBankQuestion(0), validBankQuestion(14)}
	repo.On("CreateBatch", ctx, batch).Return(nil)

	n, err := svc.CreateQuestions(ctx, batch)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	repo.AssertExpectations(t)
}

func TestQuestionService_CreateQuestions_RejectsWholeBatch(t *testing.T) {
	testCases := []struct {
		name  string
		batch []entity.Question
	}{
		{"пустой пакет", nil},
		{"уровень за пределами лестницы", []entity.Question{validBankQuestion(0), validBankQuestion(15)}},
		{"три варианта", []entity.Question{func() entity.Question {
			q := validBankQuestion(1)
			q.Options = q.Options[:3]
			return q
		}()}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockQuestionRepository)
			svc := NewQuestionService(repo, nil)

			_, err := svc.CreateQuestions(context.Background(), tc.batch)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
		})
	}
}

func TestQuestionService_Stats(t *testing.T) {
	repo := new(MockQuestionRepository)
	svc := NewQuestionService(repo, nil)
	ctx := context.Background()
	repo.On("CountByLevel", ctx).Return(map[int]int64{0: 5, 1: 3, 14: 1}, nil)

	stats, err := svc.Stats(ctx)

	require.NoError(t, err)
	require.Len(t, stats.Levels, 15)
	assert.Equal(t, int64(9), stats.Total)
	assert.False(t, stats.Ready, "на уровнях 2..13 нет вопросов")
	assert.Equal(t, int64(1000000), stats.Levels[14].Prize)
	assert.Zero(t, stats.Levels[7].Count)
}
