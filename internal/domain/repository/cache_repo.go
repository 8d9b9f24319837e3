package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	// SetNX устанавливает ключ, только если его нет. true - ключ установлен.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	// ReleaseLock удаляет ключ, только если его значение совпадает с token
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
}
