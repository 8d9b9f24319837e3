package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/handler/dto"
	"github.com/yourusername/millionaire-api/internal/middleware"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
	"github.com/yourusername/millionaire-api/internal/service"
	"github.com/yourusername/millionaire-api/internal/service/gameengine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// newAuthedContext контекст с пользователем и, опционально, ID игры
func newAuthedContext(method, path string, body interface{}, userID, gameID uint) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := newTestGinContext(method, path, body)
	c.Set(middleware.ContextUserID, userID)
	if gameID != 0 {
		c.Set("gameID", gameID)
	}
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// Моки сервисов
// ============================================================================

type MockGameService struct {
	mock.Mock
	engine *gameengine.Engine
}

func (m *MockGameService) Engine() *gameengine.Engine { return m.engine }

func (m *MockGameService) CreateGame(ctx context.Context, userID uint) (*entity.Game, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameService) GetGame(ctx context.Context, userID, gameID uint) (*entity.Game, error) {
	args := m.Called(ctx, userID, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameService) GetCurrentGame(ctx context.Context, userID uint) (*entity.Game, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameService) ListUserGames(ctx context.Context, userID uint, page, pageSize int) ([]entity.Game, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Game), args.Get(1).(int64), args.Error(2)
}

func (m *MockGameService) ListAllUserGames(ctx context.Context, userID uint) ([]entity.Game, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Game), args.Error(1)
}

func (m *MockGameService) Answer(ctx context.Context, userID, gameID uint, letter string) (*service.AnswerResult, error) {
	args := m.Called(ctx, userID, gameID, letter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerResult), args.Error(1)
}

func (m *MockGameService) TakeMoney(ctx context.Context, userID, gameID uint) (*entity.Game, bool, error) {
	args := m.Called(ctx, userID, gameID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*entity.Game), args.Bool(1), args.Error(2)
}

func (m *MockGameService) UseHelp(ctx context.Context, userID, gameID uint, kind entity.HelpKind) (*entity.Game, bool, error) {
	args := m.Called(ctx, userID, gameID, kind)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*entity.Game), args.Bool(1), args.Error(2)
}

func (m *MockGameService) CheckTimeout(ctx context.Context, userID, gameID uint) (*entity.Game, error) {
	args := m.Called(ctx, userID, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*entity.User, string, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.User), args.String(1), args.Error(2)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, userID uint) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) GetLeaderboard(ctx context.Context, page, pageSize int) (*dto.PaginatedLeaderboardResponse, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedLeaderboardResponse), args.Error(1)
}

type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) CreateQuestions(ctx context.Context, questions []entity.Question) (int, error) {
	args := m.Called(ctx, questions)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionService) Stats(ctx context.Context) (*dto.QuestionStatsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuestionStatsResponse), args.Error(1)
}

// newTestEngine движок с фиксированным временем и seed
func newTestEngine(now time.Time) *gameengine.Engine {
	clock := gameengine.ClockFunc(func() time.Time { return now })
	return gameengine.NewEngine(gameengine.DefaultRules(), clock, rand.New(rand.NewSource(1)))
}

// newTestGame игра из 15 вопросов, созданная движком
func newTestGame(t *testing.T, engine *gameengine.Engine, userID uint) *entity.Game {
	t.Helper()
	questions := make([]*entity.Question, engine.Rules().LevelsCount())
	for level := range questions {
		questions[level] = &entity.Question{
			ID:            uint(level + 1),
			Level:         level,
			Text:          fmt.Sprintf("Вопрос уровня %d", level),
			Options:       entity.StringArray{"один", "два", "три", "четыре"},
			CorrectOption: 1,
		}
	}
	game, err := engine.NewGame(userID, questions)
	require.NoError(t, err)
	game.ID = 77
	return game
}

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"provisioning", service.ErrProvisioning, http.StatusServiceUnavailable},
		{"storage", fmt.Errorf("%w: commit", apperrors.ErrStorage), http.StatusServiceUnavailable},
		{"invalid letter", entity.ErrInvalidLetter, http.StatusUnprocessableEntity},
		{"invalid help", entity.ErrInvalidHelpType, http.StatusUnprocessableEntity},
		{"validation", apperrors.ErrValidation, http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("game 5: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"in progress", service.ErrGameCreationLocked, http.StatusConflict},
		{"unauthorized", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodGet, "/", nil)

			handleError(c, "Test", tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseJSONResponse(t, w)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHandleError_InternalHidesDetails(t *testing.T) {
	c, w := newTestGinContext(http.MethodGet, "/", nil)

	handleError(c, "Test", errors.New("pq: password authentication failed"))

	resp := parseJSONResponse(t, w)
	assert.Equal(t, "Internal server error", resp["error"])
}

func TestSanitizeForExcel(t *testing.T) {
	assert.Equal(t, "", sanitizeForExcel(""))
	assert.Equal(t, "'=SUM(A1)", sanitizeForExcel("=SUM(A1)"))
	assert.Equal(t, "'+7", sanitizeForExcel("+7"))
	assert.Equal(t, "'-1", sanitizeForExcel("-1"))
	assert.Equal(t, "'@cmd", sanitizeForExcel("@cmd"))
	assert.Equal(t, "Победа", sanitizeForExcel("Победа"))
}
