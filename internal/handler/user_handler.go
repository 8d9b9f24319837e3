package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/handler/dto"
	"github.com/yourusername/millionaire-api/internal/middleware"
)

// UserUseCase операции с пользователями
type UserUseCase interface {
	GetProfile(ctx context.Context, userID uint) (*entity.User, error)
	GetLeaderboard(ctx context.Context, page, pageSize int) (*dto.PaginatedLeaderboardResponse, error)
}

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService UserUseCase
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService UserUseCase) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe возвращает профиль текущего пользователя с балансом
// GET /api/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleError(c, "UserHandler.GetMe", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// GetLeaderboard обрабатывает запрос на получение лидерборда
// GET /api/leaderboard
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	page, pageSize := middleware.PageParams(c)

	leaderboard, err := h.userService.GetLeaderboard(c.Request.Context(), page, pageSize)
	if err != nil {
		handleError(c, "UserHandler.GetLeaderboard", err)
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}
