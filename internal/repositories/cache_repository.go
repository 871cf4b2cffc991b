package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss - ключа нет в кеше. Не ошибка хранилища.
var ErrCacheMiss = errors.New("ключ не найден в кеше")

// CacheRepositoryInterface - кеш готовой статистики и счетчик ее версии.
type CacheRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}
