package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/domain/repository"
	"github.com/yourusername/millionaire-api/internal/handler/dto"
)

const leaderboardCacheTTL = 30 * time.Second

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo  repository.UserRepository
	cacheRepo repository.CacheRepository // может быть nil
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository, cacheRepo repository.CacheRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
	}
}

// GetProfile возвращает пользователя по ID
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetLeaderboard возвращает пагинированный список пользователей по балансу.
// Страницы кешируются в Redis на короткое время.
func (s *UserService) GetLeaderboard(ctx context.Context, page, pageSize int) (*dto.PaginatedLeaderboardResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize

	cacheKey := fmt.Sprintf("leaderboard:%d:%d", page, pageSize)
	if s.cacheRepo != nil {
		var cached dto.PaginatedLeaderboardResponse
		if err := s.cacheRepo.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	users, total, err := s.userRepo.GetLeaderboard(ctx, pageSize, offset)
	if err != nil {
		log.Printf("[UserService] Ошибка при получении лидерборда из репозитория: %v", err)
		return nil, err
	}

	userDTOs := make([]*dto.LeaderboardUserDTO, len(users))
	for i, user := range users {
		userDTOs[i] = &dto.LeaderboardUserDTO{
			Rank:     offset + i + 1,
			UserID:   user.ID,
			Username: user.Username,
			Balance:  user.Balance,
		}
	}

	response := &dto.PaginatedLeaderboardResponse{
		Users:   userDTOs,
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(ctx, cacheKey, response, leaderboardCacheTTL); err != nil {
			log.Printf("[UserService] Ошибка кеширования лидерборда: %v", err)
		}
	}
	return response, nil
}
