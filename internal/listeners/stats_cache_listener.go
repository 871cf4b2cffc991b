package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"optilab/internal/events"
	"optilab/internal/repositories"
	"optilab/pkg/constants"
	"optilab/pkg/eventbus"
)

// StatsCacheListener сбрасывает кеш статистики: увеличивает счетчик версии,
// и старые ключи перестают находиться. Сами ключи истекают по TTL.
type StatsCacheListener struct {
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewStatsCacheListener(cache repositories.CacheRepositoryInterface, logger *zap.Logger) *StatsCacheListener {
	return &StatsCacheListener{cache: cache, logger: logger}
}

func (l *StatsCacheListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.JobChangedName, l.handleJobChanged)
	l.logger.Info("StatsCacheListener подписан на событие", zap.String("event", events.JobChangedName))
}

func (l *StatsCacheListener) handleJobChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.JobChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}
	version, err := l.cache.Incr(ctx, constants.CacheKeyStatsVersion)
	if err != nil {
		return fmt.Errorf("не удалось сбросить кеш статистики: %w", err)
	}
	l.logger.Debug("Кеш статистики сброшен",
		zap.String("action", string(e.Action)),
		zap.Int("jobs", len(e.JobIDs)),
		zap.Int64("version", version),
	)
	return nil
}
