package gameengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

func TestDefaultRules_Contract(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, 15, rules.LevelsCount())
	assert.Equal(t, 14, rules.MaxLevel())
	assert.Equal(t, int64(1_000_000), rules.MaxPrize())
	assert.Equal(t, 35*time.Minute, rules.TimeLimit())
	assert.Equal(t, []int64{100, 200, 300, 500, 1000, 2000, 4000, 8000, 16000, 32000, 64000, 125000, 250000, 500000, 1000000}, rules.Prizes())

	for _, level := range []int{3, 8, 13} {
		assert.True(t, rules.IsFireproof(level), "уровень %d должен быть несгораемым", level)
	}
	assert.False(t, rules.IsFireproof(4))
}

func TestRules_FireproofPrize(t *testing.T) {
	rules := DefaultRules()

	testCases := []struct {
		answeredLevel int
		expected      int64
	}{
		{-1, 0},
		{0, 0},
		{2, 0},
		{3, 500},
		{4, 500},
		{7, 500},
		{8, 16000},
		{12, 16000},
		{13, 500000},
		{14, 500000},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, rules.FireproofPrize(tc.answeredLevel), "answeredLevel=%d", tc.answeredLevel)
	}
}

func TestRules_FireproofPrize_Monotonic(t *testing.T) {
	rules := DefaultRules()

	prev := rules.FireproofPrize(-1)
	for level := 0; level <= rules.MaxLevel(); level++ {
		current := rules.FireproofPrize(level)
		assert.GreaterOrEqual(t, current, prev, "FireproofPrize не должен убывать (level=%d)", level)
		prev = current
	}
}

func TestRules_PrizeAt_OutOfRange(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, int64(0), rules.PrizeAt(-1))
	assert.Equal(t, int64(0), rules.PrizeAt(15))
	assert.Equal(t, int64(200), rules.PrizeAt(1))
}

func TestNewRules_Validation(t *testing.T) {
	testCases := []struct {
		name      string
		prizes    []int64
		fireproof []int
		limit     time.Duration
	}{
		{"пустая таблица", nil, nil, time.Minute},
		{"призы не возрастают", []int64{100, 100, 300}, []int{1}, time.Minute},
		{"несгораемый уровень вне таблицы", []int64{100, 200, 300}, []int{3}, time.Minute},
		{"несгораемые уровни не возрастают", []int64{100, 200, 300}, []int{1, 1}, time.Minute},
		{"нулевой лимит", []int64{100, 200, 300}, []int{1}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRules(tc.prizes, tc.fireproof, tc.limit)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestNewRules_CopiesInput(t *testing.T) {
	prizes := []int64{10, 20, 30}
	rules, err := NewRules(prizes, []int{1}, time.Minute)
	require.NoError(t, err)

	prizes[2] = 1

	assert.Equal(t, int64(30), rules.MaxPrize(), "изменение исходного среза не должно влиять на правила")
}

func TestRules_WithTimeLimit(t *testing.T) {
	rules := DefaultRules()

	shorter, err := rules.WithTimeLimit(10 * time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, shorter.TimeLimit())
	assert.Equal(t, 35*time.Minute, rules.TimeLimit(), "исходные правила не должны меняться")
	assert.Equal(t, rules.Prizes(), shorter.Prizes())
}
