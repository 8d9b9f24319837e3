package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

// QuestionOptionsCount количество вариантов ответа у каждого вопроса
const QuestionOptionsCount = 4

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Question вопрос из банка вопросов. Один вопрос переиспользуется многими играми только на чтение.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Level         int         `gorm:"not null;index" json:"level"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null" json:"-"` // Номер слота 1..4, скрыт от клиента
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли слот правильным вариантом
func (q *Question) IsCorrect(slot int) bool {
	return slot == q.CorrectOption
}

// IsValidOption проверяет, что номер слота лежит в диапазоне 1..len(Options)
func (q *Question) IsValidOption(slot int) bool {
	return slot >= 1 && slot <= len(q.Options)
}

// OptionText возвращает текст варианта по номеру слота (1-based)
func (q *Question) OptionText(slot int) string {
	if !q.IsValidOption(slot) {
		return ""
	}
	return q.Options[slot-1]
}

// Validate проверяет, что у вопроса есть текст, ровно 4 варианта и корректный правильный слот
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is empty", apperrors.ErrValidation)
	}
	if len(q.Options) != QuestionOptionsCount {
		return fmt.Errorf("%w: question must have exactly %d options, got %d", apperrors.ErrValidation, QuestionOptionsCount, len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: option %d is empty", apperrors.ErrValidation, i+1)
		}
	}
	if !q.IsValidOption(q.CorrectOption) {
		return fmt.Errorf("%w: correct_option must be in [1, %d], got %d", apperrors.ErrValidation, QuestionOptionsCount, q.CorrectOption)
	}
	if q.Level < 0 {
		return fmt.Errorf("%w: level must be non-negative", apperrors.ErrValidation)
	}
	return nil
}
