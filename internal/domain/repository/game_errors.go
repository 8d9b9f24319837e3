package repository

import (
	"fmt"

	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

var (
	// ErrGameInProgress означает, что у пользователя уже есть незавершённая игра.
	ErrGameInProgress = fmt.Errorf("%w: another game is already in progress", apperrors.ErrConflict)
)
