package listeners

import (
	"context"

	"go.uber.org/zap"

	"optilab/internal/events"
	"optilab/pkg/eventbus"
)

// ActivityListener пишет изменения работ и заказов в лог. Точка подключения
// для внешнего транспорта уведомлений.
type ActivityListener struct {
	logger *zap.Logger
}

func NewActivityListener(logger *zap.Logger) *ActivityListener {
	return &ActivityListener{logger: logger}
}

func (l *ActivityListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.JobChangedName, l.handle)
	bus.Subscribe(events.SparePartChangedName, l.handle)
}

func (l *ActivityListener) handle(ctx context.Context, event eventbus.Event) error {
	switch e := event.(type) {
	case events.JobChangedEvent:
		l.logger.Info("Изменение работ",
			zap.String("action", string(e.Action)),
			zap.Strings("job_ids", e.JobIDs),
			zap.String("actor_id", e.Actor.ID),
			zap.String("role", string(e.Actor.Role)),
		)
	case events.SparePartChangedEvent:
		l.logger.Info("Изменение заказа запчасти",
			zap.String("action", string(e.Action)),
			zap.String("spare_part_id", e.SparePartID),
			zap.String("job_id", e.JobID),
			zap.String("actor_id", e.Actor.ID),
		)
	}
	return nil
}
