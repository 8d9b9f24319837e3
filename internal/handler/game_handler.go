package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/handler/dto"
	"github.com/yourusername/millionaire-api/internal/middleware"
	"github.com/yourusername/millionaire-api/internal/service"
	"github.com/yourusername/millionaire-api/internal/service/gameengine"
)

// GameUseCase операции игрового сервиса
type GameUseCase interface {
	Engine() *gameengine.Engine
	CreateGame(ctx context.Context, userID uint) (*entity.Game, error)
	GetGame(ctx context.Context, userID, gameID uint) (*entity.Game, error)
	GetCurrentGame(ctx context.Context, userID uint) (*entity.Game, error)
	ListUserGames(ctx context.Context, userID uint, page, pageSize int) ([]entity.Game, int64, error)
	ListAllUserGames(ctx context.Context, userID uint) ([]entity.Game, error)
	Answer(ctx context.Context, userID, gameID uint, letter string) (*service.AnswerResult, error)
	TakeMoney(ctx context.Context, userID, gameID uint) (*entity.Game, bool, error)
	UseHelp(ctx context.Context, userID, gameID uint, kind entity.HelpKind) (*entity.Game, bool, error)
	CheckTimeout(ctx context.Context, userID, gameID uint) (*entity.Game, error)
}

// GameHandler обрабатывает запросы, связанные с играми
type GameHandler struct {
	gameService GameUseCase
}

// NewGameHandler создает новый обработчик игр
func NewGameHandler(gameService GameUseCase) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// AnswerRequest ответ игрока на текущий вопрос
type AnswerRequest struct {
	Letter string `json:"letter" binding:"required"`
}

// HelpRequest запрос подсказки
type HelpRequest struct {
	HelpType string `json:"help_type" binding:"required"`
}

// currentUser достает ID пользователя или отвечает 401
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return userID, ok
}

func (h *GameHandler) gameResponse(game *entity.Game, withLadder bool) *dto.GameResponse {
	return dto.NewGameResponse(game, h.gameService.Engine(), withLadder)
}

// CreateGame начинает новую игру
// POST /api/games
func (h *GameHandler) CreateGame(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	game, err := h.gameService.CreateGame(c.Request.Context(), userID)
	if err != nil {
		handleError(c, "GameHandler.CreateGame", err)
		return
	}

	c.JSON(http.StatusCreated, h.gameResponse(game, true))
}

// GetCurrentGame возвращает незавершённую игру пользователя
// GET /api/games/current
func (h *GameHandler) GetCurrentGame(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	game, err := h.gameService.GetCurrentGame(c.Request.Context(), userID)
	if err != nil {
		handleError(c, "GameHandler.GetCurrentGame", err)
		return
	}

	c.JSON(http.StatusOK, h.gameResponse(game, true))
}

// GetGame возвращает игру по ID
// GET /api/games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	gameID := c.MustGet("gameID").(uint)

	game, err := h.gameService.GetGame(c.Request.Context(), userID, gameID)
	if err != nil {
		handleError(c, "GameHandler.GetGame", err)
		return
	}

	c.JSON(http.StatusOK, h.gameResponse(game, false))
}

// Answer принимает ответ на текущий вопрос
// PUT /api/games/:id/answer
func (h *GameHandler) Answer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	gameID := c.MustGet("gameID").(uint)

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.gameService.Answer(c.Request.Context(), userID, gameID, req.Letter)
	if err != nil {
		handleError(c, "GameHandler.Answer", err)
		return
	}

	c.JSON(http.StatusOK, dto.AnswerResponse{
		Correct:       result.Correct,
		Game:          h.gameResponse(result.Game, false),
		CorrectAnswer: result.CorrectAnswerKey,
	})
}

// TakeMoney завершает игру с текущим выигрышем
// PUT /api/games/:id/take-money
func (h *GameHandler) TakeMoney(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	gameID := c.MustGet("gameID").(uint)

	game, finished, err := h.gameService.TakeMoney(c.Request.Context(), userID, gameID)
	if err != nil {
		handleError(c, "GameHandler.TakeMoney", err)
		return
	}

	c.JSON(http.StatusOK, dto.ActionResponse{Applied: finished, Game: h.gameResponse(game, false)})
}

// UseHelp применяет подсказку к текущему вопросу
// PUT /api/games/:id/help
func (h *GameHandler) UseHelp(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	gameID := c.MustGet("gameID").(uint)

	var req HelpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	game, applied, err := h.gameService.UseHelp(c.Request.Context(), userID, gameID, entity.HelpKind(req.HelpType))
	if err != nil {
		handleError(c, "GameHandler.UseHelp", err)
		return
	}

	c.JSON(http.StatusOK, dto.ActionResponse{Applied: applied, Game: h.gameResponse(game, false)})
}

// CheckTimeout завершает игру, если время вышло
// PUT /api/games/:id/timeout
func (h *GameHandler) CheckTimeout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	gameID := c.MustGet("gameID").(uint)

	game, err := h.gameService.CheckTimeout(c.Request.Context(), userID, gameID)
	if err != nil {
		handleError(c, "GameHandler.CheckTimeout", err)
		return
	}

	c.JSON(http.StatusOK, h.gameResponse(game, false))
}

// ListMyGames возвращает историю игр пользователя
// GET /api/users/me/games
func (h *GameHandler) ListMyGames(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, pageSize := middleware.PageParams(c)

	games, total, err := h.gameService.ListUserGames(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		handleError(c, "GameHandler.ListMyGames", err)
		return
	}

	engine := h.gameService.Engine()
	items := make([]*dto.GameHistoryItemDTO, 0, len(games))
	for i := range games {
		items = append(items, dto.NewGameHistoryItem(&games[i], engine))
	}

	c.JSON(http.StatusOK, dto.PaginatedGamesResponse{
		Games:   items,
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	})
}

// ExportMyGames экспортирует историю игр в CSV или Excel формате
// GET /api/users/me/games/export?format=csv|xlsx
func (h *GameHandler) ExportMyGames(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")

	// Все игры без пагинации
	games, err := h.gameService.ListAllUserGames(c.Request.Context(), userID)
	if err != nil {
		handleError(c, "GameHandler.ExportMyGames", err)
		return
	}

	engine := h.gameService.Engine()
	rows := make([]exportRow, 0, len(games))
	for i := range games {
		rows = append(rows, newExportRow(dto.NewGameHistoryItem(&games[i], engine)))
	}

	filename := fmt.Sprintf("user_%d_games_%s", userID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		exportXLSX(c, rows, filename)
	default:
		exportCSV(c, rows, filename)
	}
}

var exportHeaders = []string{"ID", "Статус", "Уровень", "Выигрыш", "Начало", "Окончание", "50/50", "Помощь зала", "Звонок другу"}

// exportRow строка выгрузки истории игр
type exportRow struct {
	ID         uint
	Status     string
	Level      int
	Prize      int64
	StartedAt  string
	FinishedAt string
	FiftyFifty string
	Audience   string
	FriendCall string
}

func newExportRow(item *dto.GameHistoryItemDTO) exportRow {
	finished := ""
	if item.FinishedAt != nil {
		finished = item.FinishedAt.Format(time.RFC3339)
	}
	return exportRow{
		ID:         item.ID,
		Status:     translateStatus(item.Status),
		Level:      item.CurrentLevel,
		Prize:      item.Prize,
		StartedAt:  item.StartedAt.Format(time.RFC3339),
		FinishedAt: finished,
		FiftyFifty: yesNo(item.HelpsUsed.FiftyFifty),
		Audience:   yesNo(item.HelpsUsed.AudienceHelp),
		FriendCall: yesNo(item.HelpsUsed.FriendCall),
	}
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}

// translateStatus переводит статус игры для выгрузки
func translateStatus(status entity.GameStatus) string {
	switch status {
	case entity.GameStatusInProgress:
		return "В процессе"
	case entity.GameStatusWon:
		return "Победа"
	case entity.GameStatusMoney:
		return "Забрал деньги"
	case entity.GameStatusFail:
		return "Проигрыш"
	case entity.GameStatusTimeout:
		return "Время вышло"
	default:
		return string(status)
	}
}

// exportCSV экспортирует историю в CSV с правильным экранированием спецсимволов
func exportCSV(c *gin.Context, rows []exportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			strconv.FormatUint(uint64(r.ID), 10),
			sanitizeForExcel(r.Status),
			strconv.Itoa(r.Level),
			strconv.FormatInt(r.Prize, 10),
			r.StartedAt,
			r.FinishedAt,
			r.FiftyFifty,
			r.Audience,
			r.FriendCall,
		})
	}
}

// exportXLSX экспортирует историю в Excel через StreamWriter
func exportXLSX(c *gin.Context, rows []exportRow, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Игры"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[GameHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		headers[i] = h
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[GameHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2 // 1 - заголовки
		row := []interface{}{r.ID, sanitizeForExcel(r.Status), r.Level, r.Prize, r.StartedAt, r.FinishedAt, r.FiftyFifty, r.Audience, r.FriendCall}
		if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), row); err != nil {
			log.Printf("[GameHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[GameHandler] Ошибка при Flush: %v", err)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[GameHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
