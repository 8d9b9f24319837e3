package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/handler/dto"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

func TestUserHandler_GetMe(t *testing.T) {
	svc := &MockUserService{}
	svc.On("GetProfile", mock.Anything, uint(3)).
		Return(&entity.User{ID: 3, Username: "player", Email: "player@test.com", Balance: 32_500}, nil)
	handler := NewUserHandler(svc)
	c, w := newAuthedContext(http.MethodGet, "/api/users/me", nil, 3, 0)

	handler.GetMe(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, float64(32_500), resp["balance"])
	assert.NotContains(t, resp, "password")
}

func TestUserHandler_GetMe_Errors(t *testing.T) {
	handler := NewUserHandler(&MockUserService{})
	c, w := newTestGinContext(http.MethodGet, "/api/users/me", nil)
	handler.GetMe(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc := &MockUserService{}
	svc.On("GetProfile", mock.Anything, uint(3)).Return(nil, apperrors.ErrNotFound)
	handler = NewUserHandler(svc)
	c, w = newAuthedContext(http.MethodGet, "/api/users/me", nil, 3, 0)
	handler.GetMe(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_GetLeaderboard(t *testing.T) {
	// Arrange
	svc := &MockUserService{}
	board := &dto.PaginatedLeaderboardResponse{
		Users: []*dto.LeaderboardUserDTO{
			{Rank: 1, UserID: 8, Username: "leader", Balance: 1_000_000},
			{Rank: 2, UserID: 3, Username: "player", Balance: 500},
		},
		Total:   2,
		Page:    1,
		PerPage: 10,
	}
	svc.On("GetLeaderboard", mock.Anything, 1, 10).Return(board, nil)
	handler := NewUserHandler(svc)
	c, w := newTestGinContext(http.MethodGet, "/api/leaderboard", nil)

	// Act
	handler.GetLeaderboard(c)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	users := resp["users"].([]interface{})
	require.Len(t, users, 2)
	assert.Equal(t, "leader", users[0].(map[string]interface{})["username"])
	svc.AssertExpectations(t)
}
