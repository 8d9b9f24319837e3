package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/domain/repository"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

// balanceCreditor зачисляет приз в транзакции записи игры
type balanceCreditor interface {
	CreditBalance(tx *gorm.DB, userID uint, amount int64) error
}

// GameRepo реализует repository.GameRepository
type GameRepo struct {
	db    *gorm.DB
	users balanceCreditor
}

// NewGameRepo создает новый репозиторий игр
func NewGameRepo(db *gorm.DB, users balanceCreditor) *GameRepo {
	return &GameRepo{db: db, users: users}
}

// Create сохраняет игру и все её вопросы одной транзакцией.
// Partial unique index idx_games_user_in_progress не допускает второй незавершённой игры.
func (r *GameRepo) Create(ctx context.Context, game *entity.Game) error {
	questions := game.GameQuestions

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(game).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: user #%d", repository.ErrGameInProgress, game.UserID)
			}
			return storageError("create game", err)
		}

		for i := range questions {
			questions[i].GameID = game.ID
		}
		if len(questions) > 0 {
			if err := tx.Omit(clause.Associations).Create(&questions).Error; err != nil {
				return storageError("create game questions", err)
			}
		}
		return nil
	})
	if err != nil {
		game.ID = 0
		return err
	}

	game.GameQuestions = questions
	return nil
}

// GetByID возвращает игру с вопросами, упорядоченными по уровню
func (r *GameRepo) GetByID(ctx context.Context, id uint) (*entity.Game, error) {
	var game entity.Game
	err := r.db.WithContext(ctx).
		Preload("GameQuestions", func(db *gorm.DB) *gorm.DB { return db.Order("level") }).
		Preload("GameQuestions.Question").
		First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: game #%d", apperrors.ErrNotFound, id)
		}
		return nil, storageError("get game", err)
	}
	return &game, nil
}

// GetInProgressByUserID возвращает незавершённую игру пользователя
func (r *GameRepo) GetInProgressByUserID(ctx context.Context, userID uint) (*entity.Game, error) {
	var game entity.Game
	err := r.db.WithContext(ctx).
		Preload("GameQuestions", func(db *gorm.DB) *gorm.DB { return db.Order("level") }).
		Preload("GameQuestions.Question").
		Where("user_id = ? AND finished_at IS NULL", userID).
		Order("id DESC").
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError("get current game", err)
	}
	return &game, nil
}

// ListByUserID возвращает игры пользователя (новые первыми) и их общее количество
func (r *GameRepo) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]entity.Game, int64, error) {
	var games []entity.Game
	var total int64

	db := r.db.WithContext(ctx).Model(&entity.Game{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, storageError("count games", err)
	}
	if total == 0 {
		return []entity.Game{}, 0, nil
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&games).Error; err != nil {
		return nil, 0, storageError("list games", err)
	}
	return games, total, nil
}

// UpdateLocked выполняет изменение игры под блокировкой строки.
// Ошибка fn возвращается как есть, транзакция откатывается.
func (r *GameRepo) UpdateLocked(ctx context.Context, gameID uint, fn repository.GameMutation) (*entity.Game, error) {
	var (
		result   *entity.Game
		mutation error
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game entity.Game
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&game, gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: game #%d", apperrors.ErrNotFound, gameID)
			}
			return storageError("lock game", err)
		}

		err := tx.Preload("Question").
			Where("game_id = ?", game.ID).
			Order("level").
			Find(&game.GameQuestions).Error
		if err != nil {
			return storageError("load game questions", err)
		}

		update, err := fn(&game)
		if err != nil {
			mutation = err
			return err
		}
		if update != nil {
			if err := r.persist(tx, &game, update); err != nil {
				return err
			}
		}

		result = &game
		return nil
	})
	if mutation != nil {
		return nil, mutation
	}
	if err != nil {
		log.Printf("[GameRepo.UpdateLocked] Ошибка при обновлении игры ID=%d: %v", gameID, err)
		return nil, err
	}
	return result, nil
}

// persist записывает изменённые поля игры, подсказки вопроса и зачисление баланса
func (r *GameRepo) persist(tx *gorm.DB, game *entity.Game, update *repository.GameUpdate) error {
	now := time.Now()
	game.UpdatedAt = now

	err := tx.Model(&entity.Game{}).
		Where("id = ?", game.ID).
		Updates(map[string]interface{}{
			"current_level":      game.CurrentLevel,
			"prize":              game.Prize,
			"is_failed":          game.IsFailed,
			"finished_at":        game.FinishedAt,
			"fifty_fifty_used":   game.FiftyFiftyUsed,
			"audience_help_used": game.AudienceHelpUsed,
			"friend_call_used":   game.FriendCallUsed,
			"updated_at":         now,
		}).Error
	if err != nil {
		return storageError("update game", err)
	}

	if q := update.Question; q != nil {
		err := tx.Model(&entity.GameQuestion{}).
			Where("id = ?", q.ID).
			Updates(map[string]interface{}{
				"help_hash":  q.HelpHash,
				"updated_at": now,
			}).Error
		if err != nil {
			return storageError("update game question", err)
		}
	}

	if update.Credit > 0 {
		if err := r.users.CreditBalance(tx, game.UserID, update.Credit); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			return storageError("credit balance", err)
		}
	}
	return nil
}

// PurgeFinishedBefore удаляет завершённые игры, законченные раньше before
func (r *GameRepo) PurgeFinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("finished_at IS NOT NULL AND finished_at < ?", before).
		Delete(&entity.Game{})
	if result.Error != nil {
		return 0, storageError("purge games", result.Error)
	}
	return result.RowsAffected, nil
}
