package gameengine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

// ErrQuestionMissing игра не содержит вопроса для текущего уровня
var ErrQuestionMissing = fmt.Errorf("%w: game question for current level", apperrors.ErrNotFound)

// Engine применяет правила игры к entity.Game.
// Движок не работает с хранилищем: вызывающий код загружает игру под блокировкой,
// вызывает метод движка и сохраняет результат в одной транзакции.
type Engine struct {
	rules *Rules
	clock Clock

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine создает движок. nil clock/rng заменяются системными.
func NewEngine(rules *Rules, clock Clock, rng *rand.Rand) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rules: rules, clock: clock, rng: rng}
}

// Rules возвращает правила движка
func (e *Engine) Rules() *Rules {
	return e.rules
}

// Now текущее время по часам движка
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// withRand выполняет fn под мьютексом генератора (rand.Rand не потокобезопасен)
func (e *Engine) withRand(fn func(rng *rand.Rand)) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	fn(e.rng)
}

// NewGame собирает новую игру из вопросов, по одному на каждый уровень 0..MaxLevel.
// questions[i] должен быть вопросом уровня i.
func (e *Engine) NewGame(userID uint, questions []*entity.Question) (*entity.Game, error) {
	if len(questions) != e.rules.LevelsCount() {
		return nil, fmt.Errorf("%w: need %d questions, got %d", apperrors.ErrValidation, e.rules.LevelsCount(), len(questions))
	}

	game := &entity.Game{
		UserID:        userID,
		StartedAt:     e.Now(),
		GameQuestions: make([]entity.GameQuestion, 0, len(questions)),
	}

	var err error
	e.withRand(func(rng *rand.Rand) {
		for level, q := range questions {
			if q == nil || q.Level != level {
				err = fmt.Errorf("%w: question for level %d is missing or has wrong level", apperrors.ErrValidation, level)
				return
			}
			game.GameQuestions = append(game.GameQuestions, entity.NewGameQuestion(q, rng))
		}
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// TimedOut true, если с начала игры прошло больше лимита времени
func (e *Engine) TimedOut(game *entity.Game) bool {
	return e.Now().Sub(game.StartedAt) > e.rules.TimeLimit()
}

// TimeLeft оставшееся время игры (0 для завершённой или просроченной)
func (e *Engine) TimeLeft(game *entity.Game) time.Duration {
	if game.Finished() {
		return 0
	}
	left := e.rules.TimeLimit() - e.Now().Sub(game.StartedAt)
	if left < 0 {
		return 0
	}
	return left
}

// CheckTimeout завершает просроченную незавершённую игру с несгораемой суммой.
// Вызывается первым в каждой изменяющей операции.
func (e *Engine) CheckTimeout(game *entity.Game) bool {
	if game.Finished() || !e.TimedOut(game) {
		return false
	}
	e.finish(game, e.rules.FireproofPrize(game.PreviousLevel()), true)
	return true
}

// Answer отвечает на текущий вопрос. Возвращает true только для правильного ответа в активной игре.
func (e *Engine) Answer(game *entity.Game, letter string) (bool, error) {
	if !entity.IsValidLetter(letter) {
		return false, entity.ErrInvalidLetter
	}
	if e.CheckTimeout(game) || game.Finished() {
		return false, nil
	}

	question := game.CurrentGameQuestion()
	if question == nil {
		return false, ErrQuestionMissing
	}

	if !question.AnswerCorrect(letter) {
		e.finish(game, e.rules.FireproofPrize(game.PreviousLevel()), true)
		return false, nil
	}

	game.CurrentLevel++
	if game.CurrentLevel > e.rules.MaxLevel() {
		e.finish(game, e.rules.MaxPrize(), false)
	}
	return true, nil
}

// TakeMoney забирает выигрыш за последний пройденный уровень.
// Возвращает true, если этот вызов завершил игру.
func (e *Engine) TakeMoney(game *entity.Game) bool {
	if e.CheckTimeout(game) || game.Finished() {
		return false
	}
	e.finish(game, e.rules.PrizeAt(game.PreviousLevel()), false)
	return true
}

// UseHelp применяет подсказку к текущему вопросу. Каждая подсказка доступна один раз за игру.
func (e *Engine) UseHelp(game *entity.Game, kind entity.HelpKind) (bool, error) {
	if _, err := entity.ParseHelpKind(string(kind)); err != nil {
		return false, err
	}
	if e.CheckTimeout(game) || game.Finished() {
		return false, nil
	}
	if game.HelpUsed(kind) {
		return false, nil
	}

	question := game.CurrentGameQuestion()
	if question == nil {
		return false, ErrQuestionMissing
	}

	var err error
	e.withRand(func(rng *rand.Rand) {
		err = question.ApplyHelp(kind, rng)
	})
	if err != nil {
		return false, err
	}
	game.MarkHelpUsed(kind)
	return true, nil
}

// Status вычисляет итоговый статус игры.
// fail/timeout различаются по длительности игры относительно текущего лимита времени,
// поэтому изменение лимита меняет классификацию уже завершённых игр.
func (e *Engine) Status(game *entity.Game) entity.GameStatus {
	if !game.Finished() {
		return entity.GameStatusInProgress
	}
	if game.IsFailed {
		if game.FinishedAt.Sub(game.StartedAt) > e.rules.TimeLimit() {
			return entity.GameStatusTimeout
		}
		return entity.GameStatusFail
	}
	if game.CurrentLevel > e.rules.MaxLevel() {
		return entity.GameStatusWon
	}
	return entity.GameStatusMoney
}

// finish фиксирует итог игры. Зачисление приза на баланс выполняет хранилище
// в той же транзакции, что и запись игры.
func (e *Engine) finish(game *entity.Game, amount int64, failed bool) {
	now := e.Now()
	game.Prize = amount
	game.FinishedAt = &now
	game.IsFailed = failed
}
