package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"optilab/pkg/constants"
)

type Job struct {
	ID              string              `json:"id" db:"id"`
	Description     string              `json:"description" db:"description"`
	BranchID        string              `json:"branch_id" db:"branch_id"`
	BranchName      string              `json:"branch_name" db:"branch_name"`
	Status          constants.JobStatus `json:"status" db:"status"`
	Priority        constants.Priority  `json:"priority" db:"priority"`
	PriorityMessage null.String         `json:"priority_message" db:"priority_message"`
	JobType         constants.JobType   `json:"job_type" db:"job_type"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`

	History         []HistoryEntry  `json:"history,omitempty" db:"-"`
	LinkedSparePart *SparePartOrder `json:"linked_spare_part,omitempty" db:"-"`
}

// Clone возвращает копию, не разделяющую журнал с оригиналом.
func (j Job) Clone() Job {
	c := j
	if j.History != nil {
		c.History = append([]HistoryEntry(nil), j.History...)
	}
	if j.LinkedSparePart != nil {
		sp := j.LinkedSparePart.Clone()
		c.LinkedSparePart = &sp
	}
	return c
}
