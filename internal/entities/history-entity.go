package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"optilab/pkg/constants"
)

// HistoryEntry - неизменяемая запись журнала работы или заказа запчасти.
//
// Полезная нагрузка зависит от EventType:
//   - STATUS_CHANGE:      OldValue -> NewValue (канонические статусы)
//   - PRIORITY_CHANGE:    OldValue -> NewValue, Message = текст приоритета
//   - DESCRIPTION_CHANGE: OldValue -> NewValue
//   - BRANCH_TRANSFER:    OldValue -> NewValue (branch_id), Message = название нового филиала
//   - NOTE:               Notes
//
// Notes может сопровождать любую запись заказа запчасти.
type HistoryEntry struct {
	ID        uuid.UUID           `json:"id" db:"id"`
	EntityID  string              `json:"entity_id" db:"entity_id"`
	EventType constants.EventType `json:"event_type" db:"event_type"`
	OldValue  null.String         `json:"old_value" db:"old_value"`
	NewValue  null.String         `json:"new_value" db:"new_value"`
	Message   null.String         `json:"message" db:"message"`
	Notes     null.String         `json:"notes" db:"notes"`
	ActorID   string              `json:"actor_id" db:"actor_id"`
	ActorName string              `json:"actor_name" db:"actor_name"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
}

// JobStatus возвращает статус, в который перешла работа, если запись - смена статуса.
func (h HistoryEntry) JobStatus() (constants.JobStatus, bool) {
	if h.EventType != constants.EventStatusChange || !h.NewValue.Valid {
		return "", false
	}
	s := constants.JobStatus(h.NewValue.String)
	return s, s.Valid()
}

func (h HistoryEntry) SparePartStatus() (constants.SparePartStatus, bool) {
	if h.EventType != constants.EventStatusChange || !h.NewValue.Valid {
		return "", false
	}
	s := constants.SparePartStatus(h.NewValue.String)
	return s, s.Valid()
}
