package entity

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

// AnswerLetters буквы вариантов ответа в порядке отображения
var AnswerLetters = []string{"a", "b", "c", "d"}

// ErrInvalidLetter возвращается для буквы ответа вне {a, b, c, d}
var ErrInvalidLetter = fmt.Errorf("%w: letter must be one of a, b, c, d", apperrors.ErrValidation)

// IsValidLetter проверяет букву ответа
func IsValidLetter(letter string) bool {
	for _, l := range AnswerLetters {
		if l == letter {
			return true
		}
	}
	return false
}

// Друзья, которым можно позвонить
var friendNames = []string{
	"Василий Иванович",
	"Анна Ахматова",
	"Тётя Люба",
	"Дядя Фёдор",
	"Кот Матроскин",
	"Лев Толстой",
}

// GameQuestion вопрос конкретной игры на конкретном уровне.
// Колонки A..D хранят номер слота вопроса (1..4), который показывается под этой буквой.
type GameQuestion struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GameID     uint      `gorm:"not null;uniqueIndex:idx_game_questions_game_level" json:"game_id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"-"`
	Level      int       `gorm:"not null;uniqueIndex:idx_game_questions_game_level" json:"level"`
	A          int       `gorm:"column:a;type:smallint;not null" json:"-"`
	B          int       `gorm:"column:b;type:smallint;not null" json:"-"`
	C          int       `gorm:"column:c;type:smallint;not null" json:"-"`
	D          int       `gorm:"column:d;type:smallint;not null" json:"-"`
	HelpHash   HelpState `gorm:"type:jsonb;not null;default:'{}'" json:"help_hash"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (GameQuestion) TableName() string {
	return "game_questions"
}

// NewGameQuestion привязывает вопрос к игре со случайной перестановкой вариантов
func NewGameQuestion(question *Question, rng *rand.Rand) GameQuestion {
	slots := rng.Perm(QuestionOptionsCount)
	return GameQuestion{
		QuestionID: question.ID,
		Question:   question,
		Level:      question.Level,
		A:          slots[0] + 1,
		B:          slots[1] + 1,
		C:          slots[2] + 1,
		D:          slots[3] + 1,
	}
}

// slotFor возвращает номер слота вопроса для буквы
func (gq *GameQuestion) slotFor(letter string) (int, bool) {
	switch letter {
	case "a":
		return gq.A, true
	case "b":
		return gq.B, true
	case "c":
		return gq.C, true
	case "d":
		return gq.D, true
	}
	return 0, false
}

// Text возвращает текст вопроса
func (gq *GameQuestion) Text() string {
	if gq.Question == nil {
		return ""
	}
	return gq.Question.Text
}

// Variants возвращает тексты ответов по буквам этой игры
func (gq *GameQuestion) Variants() map[string]string {
	variants := make(map[string]string, len(AnswerLetters))
	for _, letter := range AnswerLetters {
		slot, _ := gq.slotFor(letter)
		if gq.Question != nil {
			variants[letter] = gq.Question.OptionText(slot)
		}
	}
	return variants
}

// AnswerCorrect проверяет, указывает ли буква на правильный вариант
func (gq *GameQuestion) AnswerCorrect(letter string) bool {
	slot, ok := gq.slotFor(letter)
	if !ok || gq.Question == nil {
		return false
	}
	return gq.Question.IsCorrect(slot)
}

// CorrectAnswerKey возвращает букву правильного ответа
func (gq *GameQuestion) CorrectAnswerKey() string {
	for _, letter := range AnswerLetters {
		if gq.AnswerCorrect(letter) {
			return letter
		}
	}
	return ""
}

// wrongLetters возвращает буквы неправильных ответов
func (gq *GameQuestion) wrongLetters() []string {
	correct := gq.CorrectAnswerKey()
	wrong := make([]string, 0, len(AnswerLetters)-1)
	for _, letter := range AnswerLetters {
		if letter != correct {
			wrong = append(wrong, letter)
		}
	}
	return wrong
}

// AddFiftyFifty оставляет правильный ответ и один случайный неправильный.
// Повторный вызов перезапишет результат, поэтому игра проверяет флаг использования.
func (gq *GameQuestion) AddFiftyFifty(rng *rand.Rand) {
	wrong := gq.wrongLetters()
	kept := []string{gq.CorrectAnswerKey(), wrong[rng.Intn(len(wrong))]}
	sort.Strings(kept)
	gq.HelpHash.FiftyFifty = kept
}

// AddAudienceHelp распределяет 100% голосов зала, правильный ответ получает больше всех (51..85%)
func (gq *GameQuestion) AddAudienceHelp(rng *rand.Rand) {
	correctShare := 51 + rng.Intn(35)
	rest := 100 - correctShare

	wrong := gq.wrongLetters()
	rng.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })

	poll := map[string]int{gq.CorrectAnswerKey(): correctShare}
	for i, letter := range wrong {
		if i == len(wrong)-1 {
			poll[letter] = rest
			break
		}
		share := rng.Intn(rest + 1)
		poll[letter] = share
		rest -= share
	}
	gq.HelpHash.AudienceHelp = poll
}

// AddFriendCall добавляет мнение друга: в 80% случаев друг называет правильный ответ
func (gq *GameQuestion) AddFriendCall(rng *rand.Rand) {
	letter := gq.CorrectAnswerKey()
	if rng.Intn(10) >= 8 {
		wrong := gq.wrongLetters()
		letter = wrong[rng.Intn(len(wrong))]
	}
	friend := friendNames[rng.Intn(len(friendNames))]
	gq.HelpHash.FriendCall = fmt.Sprintf("%s считает, что это вариант %s", friend, strings.ToUpper(letter))
}

// ApplyHelp применяет подсказку данного типа
func (gq *GameQuestion) ApplyHelp(kind HelpKind, rng *rand.Rand) error {
	switch kind {
	case HelpFiftyFifty:
		gq.AddFiftyFifty(rng)
	case HelpAudienceHelp:
		gq.AddAudienceHelp(rng)
	case HelpFriendCall:
		gq.AddFriendCall(rng)
	default:
		return ErrInvalidHelpType
	}
	return nil
}
