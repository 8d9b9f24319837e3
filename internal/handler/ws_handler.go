package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/millionaire-api/internal/handler/dto"
	"github.com/yourusername/millionaire-api/internal/middleware"
	"github.com/yourusername/millionaire-api/internal/websocket"
)

// WSHandler отдает поток состояния игры по WebSocket
type WSHandler struct {
	gameService    GameUseCase
	tokens         middleware.TokenParser
	upgrader       gorillaws.Upgrader
	interval       time.Duration
	allowedOrigins map[string]bool
}

// NewWSHandler создает обработчик WebSocket.
// Соединения без Origin (мобильные клиенты, curl) разрешены.
func NewWSHandler(gameService GameUseCase, tokens middleware.TokenParser, allowedOrigins []string, interval time.Duration) *WSHandler {
	h := &WSHandler{
		gameService:    gameService,
		tokens:         tokens,
		interval:       interval,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		h.allowedOrigins[origin] = true
	}
	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigins[origin] {
		return true
	}
	log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
	return false
}

// WatchGame открывает поток состояния игры
// GET /api/games/:id/ws?token=...
func (h *WSHandler) WatchGame(c *gin.Context) {
	// Браузер не может передать заголовок Authorization при открытии WebSocket
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication token"})
		return
	}
	claims, err := h.tokens.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	gameID := c.MustGet("gameID").(uint)

	// Права на игру проверяем до апгрейда, чтобы ответить обычным HTTP-кодом
	if _, err := h.gameService.GetGame(c.Request.Context(), claims.UserID, gameID); err != nil {
		handleError(c, "WSHandler.WatchGame", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler.WatchGame] Ошибка апгрейда соединения: %v", err)
		return
	}

	client := websocket.NewClient(conn, claims.UserID, gameID)
	client.StartPumps()
	log.Printf("[WSHandler.WatchGame] Подключен наблюдатель игры %d (UserID: %d, ConnID: %s)", gameID, claims.UserID, client.ConnectionID)

	engine := h.gameService.Engine()
	websocket.Watch(c.Request.Context(), client, h.interval, func(ctx context.Context) (*websocket.Snapshot, error) {
		game, err := h.gameService.GetGame(ctx, claims.UserID, gameID)
		if err != nil {
			return nil, err
		}
		return &websocket.Snapshot{
			Payload:  dto.NewGameResponse(game, engine, false),
			Finished: game.Finished(),
		}, nil
	})
}
