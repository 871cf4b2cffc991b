package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"optilab/internal/repositories"
	"optilab/pkg/eventbus"
	"optilab/pkg/types"
	"optilab/pkg/utils"
)

// BaseService - общее для сервисов: актор из контекста, кеш, публикация событий.
// cache и bus могут быть nil.
type BaseService struct {
	cache  repositories.CacheRepositoryInterface
	bus    *eventbus.Bus
	logger *zap.Logger
}

func NewBaseService(cache repositories.CacheRepositoryInterface, bus *eventbus.Bus, logger *zap.Logger) *BaseService {
	return &BaseService{cache: cache, bus: bus, logger: logger}
}

// Actor достает актора, положенного в контекст middleware.
func (s *BaseService) Actor(ctx context.Context) (types.Actor, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		s.logger.Warn("Запрос без актора", zap.Error(err))
		return types.Actor{}, err
	}
	return actor, nil
}

// CacheGet получает данные из кэша. Любая ошибка кеша равна промаху.
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("Кеш недоступен", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		s.logger.Warn("Битое значение в кеше", zap.String("key", key), zap.Error(err))
		return false
	}
	s.logger.Debug("Данные получены из кэша", zap.String("key", key))
	return true
}

// CacheSet сохраняет данные в кэш
func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	serialized, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("Не удалось сериализовать данные для кеша", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, serialized, ttl); err != nil {
		s.logger.Warn("Не удалось записать в кеш", zap.String("key", key), zap.Error(err))
	}
}

// CacheVersion - текущее значение счетчика. ok=false, если кеш выключен или недоступен.
func (s *BaseService) CacheVersion(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	v, err := s.cache.Get(ctx, key)
	if errors.Is(err, repositories.ErrCacheMiss) {
		return "0", true
	}
	if err != nil {
		s.logger.Warn("Кеш недоступен", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, true
}

// Publish отправляет событие после фиксации изменений.
func (s *BaseService) Publish(ctx context.Context, event eventbus.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}
