package helper

import (
	"github.com/yourusername/millionaire-api/internal/domain/entity"
)

// AnswerVariant вариант ответа для фронтенда
type AnswerVariant struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// ConvertVariantsToList преобразует варианты вопроса игры в список, упорядоченный по буквам.
// Если применена подсказка 50/50, остальные варианты скрываются.
func ConvertVariantsToList(gq *entity.GameQuestion) []AnswerVariant {
	variants := gq.Variants()
	kept := make(map[string]bool, len(gq.HelpHash.FiftyFifty))
	for _, letter := range gq.HelpHash.FiftyFifty {
		kept[letter] = true
	}

	converted := make([]AnswerVariant, 0, len(entity.AnswerLetters))
	for _, letter := range entity.AnswerLetters {
		if len(kept) > 0 && !kept[letter] {
			continue
		}
		text := variants[letter]
		if text == "" {
			text = "(пустой вариант)"
		}
		converted = append(converted, AnswerVariant{Letter: letter, Text: text})
	}
	return converted
}
