package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
	"github.com/yourusername/millionaire-api/internal/service"
)

// handleError отправляет HTTP ответ по типу ошибки сервиса
func handleError(c *gin.Context, component string, err error) {
	switch {
	case errors.Is(err, service.ErrProvisioning):
		log.Printf("[%s] Банк вопросов не может собрать игру: %v", component, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "error_type": "question_bank_incomplete"})
	case errors.Is(err, apperrors.ErrStorage):
		log.Printf("[%s] Временная ошибка хранилища: %v", component, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage temporarily unavailable, retry later", "error_type": "storage_unavailable"})
	case errors.Is(err, entity.ErrInvalidLetter):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "invalid_letter"})
	case errors.Is(err, entity.ErrInvalidHelpType):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "invalid_help_type"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "validation"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "error_type": "forbidden"})
	default:
		log.Printf("ERROR: Internal server error in %s: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
