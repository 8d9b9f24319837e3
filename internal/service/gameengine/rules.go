package gameengine

import (
	"fmt"
	"time"

	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

// Значения по умолчанию для правил игры
const (
	DefaultTimeLimit = 35 * time.Minute
)

var (
	defaultPrizes = []int64{
		100, 200, 300, 500, 1_000, 2_000, 4_000, 8_000, 16_000,
		32_000, 64_000, 125_000, 250_000, 500_000, 1_000_000,
	}
	// Несгораемые уровни (0-based): 4-й, 9-й и 14-й вопросы
	defaultFireproofLevels = []int{3, 8, 13}
)

// Rules описывает призовую таблицу, несгораемые уровни и лимит времени игры.
// После создания не изменяется и может разделяться между горутинами.
type Rules struct {
	prizes          []int64
	fireproofLevels []int
	timeLimit       time.Duration
}

// DefaultRules возвращает стандартные правила: 15 призов, несгораемые уровни {3, 8, 13}, 35 минут
func DefaultRules() *Rules {
	rules, err := NewRules(defaultPrizes, defaultFireproofLevels, DefaultTimeLimit)
	if err != nil {
		panic(fmt.Sprintf("gameengine: default rules are invalid: %v", err))
	}
	return rules
}

// NewRules создает правила, копируя входные срезы, и проверяет их корректность
func NewRules(prizes []int64, fireproofLevels []int, timeLimit time.Duration) (*Rules, error) {
	r := &Rules{
		prizes:          append([]int64(nil), prizes...),
		fireproofLevels: append([]int(nil), fireproofLevels...),
		timeLimit:       timeLimit,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// WithTimeLimit возвращает копию правил с другим лимитом времени
func (r *Rules) WithTimeLimit(timeLimit time.Duration) (*Rules, error) {
	return NewRules(r.prizes, r.fireproofLevels, timeLimit)
}

// Validate проверяет инварианты призовой таблицы
func (r *Rules) Validate() error {
	if len(r.prizes) == 0 {
		return fmt.Errorf("%w: prize table is empty", apperrors.ErrValidation)
	}
	for i, p := range r.prizes {
		if p <= 0 {
			return fmt.Errorf("%w: prize at level %d must be positive", apperrors.ErrValidation, i)
		}
		if i > 0 && p <= r.prizes[i-1] {
			return fmt.Errorf("%w: prizes must be strictly increasing (level %d)", apperrors.ErrValidation, i)
		}
	}
	for i, l := range r.fireproofLevels {
		if l < 0 || l > r.MaxLevel() {
			return fmt.Errorf("%w: fireproof level %d is out of range [0, %d]", apperrors.ErrValidation, l, r.MaxLevel())
		}
		if i > 0 && l <= r.fireproofLevels[i-1] {
			return fmt.Errorf("%w: fireproof levels must be strictly increasing", apperrors.ErrValidation)
		}
	}
	if r.timeLimit <= 0 {
		return fmt.Errorf("%w: time limit must be positive", apperrors.ErrValidation)
	}
	return nil
}

// LevelsCount возвращает количество вопросов в игре
func (r *Rules) LevelsCount() int {
	return len(r.prizes)
}

// MaxLevel возвращает индекс последнего вопроса
func (r *Rules) MaxLevel() int {
	return len(r.prizes) - 1
}

// MaxPrize возвращает главный приз
func (r *Rules) MaxPrize() int64 {
	return r.prizes[len(r.prizes)-1]
}

// TimeLimit возвращает лимит времени на игру
func (r *Rules) TimeLimit() time.Duration {
	return r.timeLimit
}

// Prizes возвращает копию призовой таблицы
func (r *Rules) Prizes() []int64 {
	return append([]int64(nil), r.prizes...)
}

// PrizeAt возвращает приз за уровень. Для уровня вне таблицы возвращает 0.
func (r *Rules) PrizeAt(level int) int64 {
	if level < 0 || level >= len(r.prizes) {
		return 0
	}
	return r.prizes[level]
}

// IsFireproof сообщает, является ли уровень несгораемым
func (r *Rules) IsFireproof(level int) bool {
	for _, l := range r.fireproofLevels {
		if l == level {
			return true
		}
	}
	return false
}

// FireproofPrize возвращает несгораемую сумму для последнего пройденного уровня:
// приз самого старшего несгораемого уровня, не превышающего answeredLevel, либо 0.
func (r *Rules) FireproofPrize(answeredLevel int) int64 {
	best := -1
	for _, l := range r.fireproofLevels {
		if l <= answeredLevel {
			best = l
		}
	}
	if best < 0 {
		return 0
	}
	return r.prizes[best]
}
