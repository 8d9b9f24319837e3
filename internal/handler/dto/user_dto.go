package dto

import (
	"time"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
)

// UserResponse профиль пользователя
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Balance   int64     `json:"balance"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse создает профиль из сущности пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Balance:   user.Balance,
		IsAdmin:   user.IsAdmin(),
		CreatedAt: user.CreatedAt,
	}
}

// AuthResponse ответ на регистрацию и вход
type AuthResponse struct {
	User        *UserResponse `json:"user"`
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
}

// LeaderboardUserDTO представляет одного пользователя в лидерборде
type LeaderboardUserDTO struct {
	Rank     int    `json:"rank"`     // Место пользователя в рейтинге
	UserID   uint   `json:"user_id"`  // ID пользователя
	Username string `json:"username"` // Имя пользователя
	Balance  int64  `json:"balance"`  // Сумма всех выигрышей
}

// PaginatedLeaderboardResponse представляет пагинированный ответ для лидерборда
type PaginatedLeaderboardResponse struct {
	Users   []*LeaderboardUserDTO `json:"users"`    // Список пользователей на странице
	Total   int64                 `json:"total"`    // Общее количество пользователей в лидерборде
	Page    int                   `json:"page"`     // Текущая страница
	PerPage int                   `json:"per_page"` // Количество пользователей на странице
}
