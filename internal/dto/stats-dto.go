package dto

import (
	"time"

	"optilab/internal/workflow"
)

// StatsDTO - ответ аналитики. Previous и Deltas заполняются только в режиме сравнения.
type StatsDTO struct {
	Current      workflow.Stats        `json:"current"`
	Previous     *workflow.Stats       `json:"previous,omitempty"`
	Deltas       *workflow.StatsDeltas `json:"deltas,omitempty"`
	PreviousFrom *time.Time            `json:"previous_from,omitempty"`
	PreviousTo   *time.Time            `json:"previous_to,omitempty"`
}
