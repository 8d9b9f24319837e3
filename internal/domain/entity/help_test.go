package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
)

func TestParseHelpKind(t *testing.T) {
	for _, kind := range HelpKinds {
		parsed, err := ParseHelpKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	for _, raw := range []string{"", "FIFTY_FIFTY", "hint", "fifty-fifty"} {
		_, err := ParseHelpKind(raw)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "raw=%q", raw)
	}
}

func TestHelpState_Has(t *testing.T) {
	state := HelpState{}
	assert.True(t, state.IsEmpty())

	state.FriendCall = "Кот Матроскин считает, что это вариант B"
	assert.True(t, state.Has(HelpFriendCall))
	assert.False(t, state.Has(HelpFiftyFifty))
	assert.False(t, state.Has(HelpAudienceHelp))
	assert.False(t, state.IsEmpty())
	assert.False(t, state.Has(HelpKind("other")))
}

func TestHelpState_ScanValue(t *testing.T) {
	// Arrange
	state := HelpState{
		FiftyFifty:   []string{"a", "c"},
		AudienceHelp: map[string]int{"a": 60, "b": 10, "c": 25, "d": 5},
	}

	// Act
	raw, err := state.Value()
	require.NoError(t, err)

	var restored HelpState
	require.NoError(t, restored.Scan(raw))

	// Assert
	assert.Equal(t, state, restored)
	assert.NotContains(t, string(raw.([]byte)), "friend_call", "пустые подсказки не сериализуются")
}

func TestHelpState_ScanEmpty(t *testing.T) {
	var state HelpState

	require.NoError(t, state.Scan(nil))
	assert.True(t, state.IsEmpty())

	require.NoError(t, state.Scan("{}"))
	assert.True(t, state.IsEmpty())

	assert.Error(t, state.Scan(3.14))
	assert.Error(t, state.Scan([]byte("{broken")))
}
