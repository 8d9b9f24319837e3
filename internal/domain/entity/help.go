package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

// HelpKind тип подсказки
type HelpKind string

// Доступные подсказки
const (
	HelpFiftyFifty   HelpKind = "fifty_fifty"
	HelpAudienceHelp HelpKind = "audience_help"
	HelpFriendCall   HelpKind = "friend_call"
)

// ErrInvalidHelpType возвращается для неизвестного типа подсказки
var ErrInvalidHelpType = fmt.Errorf("%w: help_type must be one of fifty_fifty, audience_help, friend_call", apperrors.ErrValidation)

// HelpKinds все подсказки в порядке отображения
var HelpKinds = []HelpKind{HelpFiftyFifty, HelpAudienceHelp, HelpFriendCall}

// ParseHelpKind проверяет строку и приводит её к HelpKind
func ParseHelpKind(s string) (HelpKind, error) {
	for _, k := range HelpKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrInvalidHelpType
}

// HelpState результаты применённых к вопросу подсказок.
// Каждое поле заполняется не более одного раза, пустое поле означает, что подсказка не применялась.
type HelpState struct {
	FiftyFifty   []string       `json:"fifty_fifty,omitempty"`   // две оставшиеся буквы
	AudienceHelp map[string]int `json:"audience_help,omitempty"` // буква -> процент голосов
	FriendCall   string         `json:"friend_call,omitempty"`   // мнение друга
}

// Has сообщает, применена ли подсказка данного типа
func (h HelpState) Has(kind HelpKind) bool {
	switch kind {
	case HelpFiftyFifty:
		return len(h.FiftyFifty) > 0
	case HelpAudienceHelp:
		return len(h.AudienceHelp) > 0
	case HelpFriendCall:
		return h.FriendCall != ""
	}
	return false
}

// IsEmpty true, если ни одна подсказка не применялась
func (h HelpState) IsEmpty() bool {
	return !h.Has(HelpFiftyFifty) && !h.Has(HelpAudienceHelp) && !h.Has(HelpFriendCall)
}

// Scan реализует интерфейс sql.Scanner для HelpState (JSONB)
func (h *HelpState) Scan(value interface{}) error {
	if value == nil {
		*h = HelpState{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal help_hash: expected []byte or string")
	}

	if len(bytes) == 0 {
		*h = HelpState{}
		return nil
	}

	var state HelpState
	if err := json.Unmarshal(bytes, &state); err != nil {
		return err
	}
	*h = state
	return nil
}

// Value реализует интерфейс driver.Valuer для HelpState
func (h HelpState) Value() (driver.Value, error) {
	return json.Marshal(h)
}
