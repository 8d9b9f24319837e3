package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/handler/dto"
)

// QuestionUseCase операции с банком вопросов
type QuestionUseCase interface {
	CreateQuestions(ctx context.Context, questions []entity.Question) (int, error)
	Stats(ctx context.Context) (*dto.QuestionStatsResponse, error)
}

// QuestionHandler обрабатывает админские запросы к банку вопросов
type QuestionHandler struct {
	questionService QuestionUseCase
}

// NewQuestionHandler создает новый обработчик банка вопросов
func NewQuestionHandler(questionService QuestionUseCase) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// BulkUpload загружает вопросы в банк
// POST /api/admin/questions
func (h *QuestionHandler) BulkUpload(c *gin.Context) {
	var req dto.BulkCreateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	questions := make([]entity.Question, 0, len(req.Questions))
	byLevel := make(map[int]int)
	for _, q := range req.Questions {
		questions = append(questions, q.ToEntity())
		byLevel[q.Level]++
	}

	created, err := h.questionService.CreateQuestions(c.Request.Context(), questions)
	if err != nil {
		handleError(c, "QuestionHandler.BulkUpload", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Questions uploaded successfully",
		"total":    created,
		"by_level": byLevel,
	})
}

// GetStats возвращает количество вопросов по уровням
// GET /api/admin/questions/stats
func (h *QuestionHandler) GetStats(c *gin.Context) {
	stats, err := h.questionService.Stats(c.Request.Context())
	if err != nil {
		handleError(c, "QuestionHandler.GetStats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
