package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// CreditBalance зачисляет сумму на баланс внутри переданной транзакции
	CreditBalance(tx *gorm.DB, userID uint, amount int64) error
	// GetLeaderboard возвращает пользователей по убыванию баланса с общим количеством
	GetLeaderboard(ctx context.Context, limit, offset int) ([]entity.User, int64, error)
}
