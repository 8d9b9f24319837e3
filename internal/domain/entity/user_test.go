package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestPlayer() *User {
	return &User{
		ID:       7,
		Username: "player1",
		Email:    "player1@millionaire.test",
		Role:     RoleUser,
		Balance:  16000,
	}
}

func TestUser_BeforeSave_HashesPassword(t *testing.T) {
	// Arrange
	user := newTestPlayer()
	user.Password = "mySecretPassword123"

	// Act
	err := user.BeforeSave(nil)

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, "mySecretPassword123", user.Password, "пароль должен быть захеширован")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("mySecretPassword123")))
	assert.Equal(t, int64(16000), user.Balance, "хеширование не должно затрагивать баланс")
	assert.Equal(t, RoleUser, user.Role)
}

func TestUser_BeforeSave_KeepsPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("alreadyHashed"), bcrypt.MinCost)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		password string
	}{
		{"уже bcrypt-хеш", string(hashed)},
		{"пустой пароль", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user := newTestPlayer()
			user.Password = tc.password

			require.NoError(t, user.BeforeSave(nil))
			assert.Equal(t, tc.password, user.Password, "пароль не должен хешироваться повторно")
		})
	}
}

func TestUser_CheckPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctPassword123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := newTestPlayer()
	user.Password = string(hashed)

	testCases := []struct {
		name     string
		password string
		expected bool
	}{
		{"верный пароль", "correctPassword123", true},
		{"неверный пароль", "wrongPassword456", false},
		{"пустой пароль", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, user.CheckPassword(tc.password))
		})
	}
}

func TestUser_IsAdmin(t *testing.T) {
	testCases := []struct {
		name     string
		role     string
		expected bool
	}{
		{"администратор", RoleAdmin, true},
		{"игрок", RoleUser, false},
		{"пустая роль", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user := &User{Role: tc.role}
			assert.Equal(t, tc.expected, user.IsAdmin())
		})
	}
}

func TestUser_JSON_ExposesBalanceOnly(t *testing.T) {
	// Arrange
	user := newTestPlayer()
	user.Role = RoleAdmin
	user.Password = "$2a$10$hash"
	user.Balance = 1000000

	// Act
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	// Assert
	assert.Equal(t, float64(1000000), fields["balance"])
	assert.Equal(t, "player1", fields["username"])
	assert.NotContains(t, fields, "password", "хеш пароля не отдаётся клиенту")
	assert.NotContains(t, fields, "role", "роль не отдаётся клиенту")
}

func TestUser_TableName(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
}
