package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
	"github.com/yourusername/millionaire-api/internal/service"
)

var handlerTestNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newGameHandlerFixture() (*GameHandler, *MockGameService) {
	svc := &MockGameService{engine: newTestEngine(handlerTestNow)}
	return NewGameHandler(svc), svc
}

func TestGameHandler_CreateGame(t *testing.T) {
	// Arrange
	h, svc := newGameHandlerFixture()
	game := newTestGame(t, svc.engine, 5)
	svc.On("CreateGame", mock.Anything, uint(5)).Return(game, nil)
	c, w := newAuthedContext(http.MethodPost, "/api/games", nil, 5, 0)

	// Act
	h.CreateGame(c)

	// Assert
	require.Equal(t, http.StatusCreated, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, float64(77), resp["id"])
	assert.Equal(t, "in_progress", resp["status"])
	assert.Equal(t, float64(0), resp["current_level"])
	assert.Equal(t, float64(35*60), resp["time_left_sec"])
	assert.Len(t, resp["prize_ladder"], 15)

	question := resp["current_question"].(map[string]interface{})
	assert.Equal(t, "Вопрос уровня 0", question["text"])
	assert.Len(t, question["variants"], 4)
	assert.NotContains(t, w.Body.String(), "correct_option", "правильный ответ не должен уходить клиенту")
	svc.AssertExpectations(t)
}

func TestGameHandler_CreateGame_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"bank incomplete", service.ErrProvisioning, http.StatusServiceUnavailable},
		{"already in progress", service.ErrGameCreationLocked, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newGameHandlerFixture()
			svc.On("CreateGame", mock.Anything, uint(5)).Return(nil, tt.err)
			c, w := newAuthedContext(http.MethodPost, "/api/games", nil, 5, 0)

			h.CreateGame(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGameHandler_RequiresUser(t *testing.T) {
	h, svc := newGameHandlerFixture()
	c, w := newTestGinContext(http.MethodPost, "/api/games", nil)

	h.CreateGame(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "CreateGame", mock.Anything, mock.Anything)
}

func TestGameHandler_GetGame_Forbidden(t *testing.T) {
	h, svc := newGameHandlerFixture()
	svc.On("GetGame", mock.Anything, uint(5), uint(9)).Return(nil, apperrors.ErrForbidden)
	c, w := newAuthedContext(http.MethodGet, "/api/games/9", nil, 5, 9)

	h.GetGame(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGameHandler_GetCurrentGame_NotFound(t *testing.T) {
	h, svc := newGameHandlerFixture()
	svc.On("GetCurrentGame", mock.Anything, uint(5)).Return(nil, apperrors.ErrNotFound)
	c, w := newAuthedContext(http.MethodGet, "/api/games/current", nil, 5, 0)

	h.GetCurrentGame(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGameHandler_Answer(t *testing.T) {
	// Arrange
	h, svc := newGameHandlerFixture()
	game := newTestGame(t, svc.engine, 5)
	game.CurrentLevel = 1
	game.Prize = 100
	svc.On("Answer", mock.Anything, uint(5), uint(77), "b").
		Return(&service.AnswerResult{Correct: true, Game: game}, nil)
	c, w := newAuthedContext(http.MethodPut, "/api/games/77/answer", map[string]string{"letter": "b"}, 5, 77)

	// Act
	h.Answer(c)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["correct"])
	assert.NotContains(t, resp, "correct_answer", "правильный ответ раскрывается только после окончания игры")
	gameResp := resp["game"].(map[string]interface{})
	assert.Equal(t, float64(1), gameResp["current_level"])
	assert.Equal(t, float64(100), gameResp["prize"])
}

func TestGameHandler_Answer_Wrong_RevealsCorrect(t *testing.T) {
	h, svc := newGameHandlerFixture()
	game := newTestGame(t, svc.engine, 5)
	finished := handlerTestNow
	game.FinishedAt = &finished
	game.IsFailed = true
	svc.On("Answer", mock.Anything, uint(5), uint(77), "a").
		Return(&service.AnswerResult{Correct: false, Game: game, CorrectAnswerKey: "c"}, nil)
	c, w := newAuthedContext(http.MethodPut, "/api/games/77/answer", map[string]string{"letter": "a"}, 5, 77)

	h.Answer(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, false, resp["correct"])
	assert.Equal(t, "c", resp["correct_answer"])
	gameResp := resp["game"].(map[string]interface{})
	assert.Equal(t, "fail", gameResp["status"])
	assert.NotContains(t, gameResp, "current_question")
}

func TestGameHandler_Answer_Validation(t *testing.T) {
	h, svc := newGameHandlerFixture()

	c, w := newAuthedContext(http.MethodPut, "/api/games/77/answer", map[string]string{}, 5, 77)
	h.Answer(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("Answer", mock.Anything, uint(5), uint(77), "e").Return(nil, entity.ErrInvalidLetter)
	c, w = newAuthedContext(http.MethodPut, "/api/games/77/answer", map[string]string{"letter": "e"}, 5, 77)
	h.Answer(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "invalid_letter", resp["error_type"])
}

func TestGameHandler_TakeMoney(t *testing.T) {
	h, svc := newGameHandlerFixture()
	game := newTestGame(t, svc.engine, 5)
	finished := handlerTestNow
	game.FinishedAt = &finished
	game.CurrentLevel = 2
	game.Prize = 200
	svc.On("TakeMoney", mock.Anything, uint(5), uint(77)).Return(game, true, nil)
	c, w := newAuthedContext(http.MethodPut, "/api/games/77/take-money", nil, 5, 77)

	h.TakeMoney(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["applied"])
	gameResp := resp["game"].(map[string]interface{})
	assert.Equal(t, "money", gameResp["status"])
	assert.Equal(t, float64(200), gameResp["prize"])
}

func TestGameHandler_UseHelp(t *testing.T) {
	// Arrange
	h, svc := newGameHandlerFixture()
	game := newTestGame(t, svc.engine, 5)
	game.FiftyFiftyUsed = true
	game.GameQuestions[0].HelpHash.FiftyFifty = []string{"a", "c"}
	svc.On("UseHelp", mock.Anything, uint(5), uint(77), entity.HelpFiftyFifty).Return(game, true, nil)
	c, w := newAuthedContext(http.MethodPut, "/api/games/77/help", map[string]string{"help_type": "fifty_fifty"}, 5, 77)

	// Act
	h.UseHelp(c)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["applied"])
	gameResp := resp["game"].(map[string]interface{})
	helps := gameResp["helps_used"].(map[string]interface{})
	assert.Equal(t, true, helps["fifty_fifty"])
	question := gameResp["current_question"].(map[string]interface{})
	assert.Len(t, question["variants"], 2, "после 50/50 остаются два варианта")
}

func TestGameHandler_UseHelp_InvalidKind(t *testing.T) {
	h, svc := newGameHandlerFixture()
	svc.On("UseHelp", mock.Anything, uint(5), uint(77), entity.HelpKind("hint")).Return(nil, false, entity.ErrInvalidHelpType)
	c, w := newAuthedContext(http.MethodPut, "/api/games/77/help", map[string]string{"help_type": "hint"}, 5, 77)

	h.UseHelp(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGameHandler_CheckTimeout(t *testing.T) {
	h, svc := newGameHandlerFixture()
	game := newTestGame(t, svc.engine, 5)
	game.StartedAt = handlerTestNow.Add(-40 * time.Minute)
	finished := handlerTestNow
	game.FinishedAt = &finished
	game.IsFailed = true
	svc.On("CheckTimeout", mock.Anything, uint(5), uint(77)).Return(game, nil)
	c, w := newAuthedContext(http.MethodPut, "/api/games/77/timeout", nil, 5, 77)

	h.CheckTimeout(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "timeout", resp["status"])
	assert.Equal(t, float64(0), resp["time_left_sec"])
}

func TestGameHandler_ListMyGames(t *testing.T) {
	h, svc := newGameHandlerFixture()
	game := newTestGame(t, svc.engine, 5)
	svc.On("ListUserGames", mock.Anything, uint(5), 2, 5).Return([]entity.Game{*game}, int64(6), nil)
	c, w := newAuthedContext(http.MethodGet, "/api/users/me/games?page=2&page_size=5", nil, 5, 0)

	h.ListMyGames(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, float64(6), resp["total"])
	assert.Equal(t, float64(2), resp["page"])
	assert.Equal(t, float64(5), resp["per_page"])
	assert.Len(t, resp["games"], 1)
}

func TestGameHandler_ExportMyGames_CSV(t *testing.T) {
	// Arrange
	h, svc := newGameHandlerFixture()
	won := newTestGame(t, svc.engine, 5)
	finished := handlerTestNow
	won.FinishedAt = &finished
	won.CurrentLevel = 15
	won.Prize = 1_000_000
	won.AudienceHelpUsed = true
	svc.On("ListAllUserGames", mock.Anything, uint(5)).Return([]entity.Game{*won}, nil)
	c, w := newAuthedContext(http.MethodGet, "/api/users/me/games/export", nil, 5, 0)

	// Act
	h.ExportMyGames(c)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "user_5_games_")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"), "CSV должен начинаться с BOM")
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Статус")
	assert.Contains(t, lines[1], "Победа")
	assert.Contains(t, lines[1], "1000000")
}

func TestGameHandler_ExportMyGames_XLSX(t *testing.T) {
	h, svc := newGameHandlerFixture()
	game := newTestGame(t, svc.engine, 5)
	svc.On("ListAllUserGames", mock.Anything, uint(5)).Return([]entity.Game{*game}, nil)
	c, w := newAuthedContext(http.MethodGet, "/api/users/me/games/export?format=xlsx", nil, 5, 0)

	h.ExportMyGames(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Игры")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Статус", rows[0][1])
	assert.Equal(t, "В процессе", rows[1][1])
}
