package events

import (
	"optilab/pkg/constants"
	"optilab/pkg/types"
)

const (
	JobChangedName       = "job.changed"
	SparePartChangedName = "spare_part.changed"
)

// Action - что произошло с сущностью.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// JobChangedEvent публикуется после коммита любого изменения работ.
// Для массовой операции - одно событие на всю пачку.
type JobChangedEvent struct {
	Action Action
	JobIDs []string
	Events []constants.EventType
	Actor  types.Actor
}

func (e JobChangedEvent) Name() string {
	return JobChangedName
}

type SparePartChangedEvent struct {
	Action      Action
	SparePartID string
	JobID       string
	Actor       types.Actor
}

func (e SparePartChangedEvent) Name() string {
	return SparePartChangedName
}
