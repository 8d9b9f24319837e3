package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, неверный пароль).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда пользователь пытается действовать в чужой игре.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных (буква ответа, тип подсказки).
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (уже есть незавершённая игра, email занят).
	ErrConflict = errors.New("resource state conflict")

	// ErrStorage означает временный сбой хранилища. Операцию можно безопасно повторить.
	ErrStorage = errors.New("storage unavailable")
)
