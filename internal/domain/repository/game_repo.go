package repository

import (
	"context"
	"time"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
)

// GameUpdate описывает, что нужно записать после изменения игры в памяти
type GameUpdate struct {
	// Credit сумма для зачисления на баланс владельца (0 - без зачисления)
	Credit int64
	// Question вопрос, у которого изменились подсказки (nil - без изменений)
	Question *entity.GameQuestion
}

// GameMutation изменяет заблокированную игру. nil-результат означает, что писать нечего.
type GameMutation func(game *entity.Game) (*GameUpdate, error)

// GameRepository определяет методы для работы с играми
type GameRepository interface {
	// Create сохраняет игру вместе со всеми её вопросами в одной транзакции
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id uint) (*entity.Game, error)
	// GetInProgressByUserID возвращает незавершённую игру пользователя или apperrors.ErrNotFound
	GetInProgressByUserID(ctx context.Context, userID uint) (*entity.Game, error)
	ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]entity.Game, int64, error)
	// UpdateLocked блокирует строку игры (SELECT ... FOR UPDATE), применяет fn и
	// записывает игру, вопрос и зачисление баланса в той же транзакции
	UpdateLocked(ctx context.Context, gameID uint, fn GameMutation) (*entity.Game, error)
	// PurgeFinishedBefore удаляет завершённые игры старше before (вопросы удаляются каскадом)
	PurgeFinishedBefore(ctx context.Context, before time.Time) (int64, error)
}
