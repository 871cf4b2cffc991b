package dto

import (
	"github.com/aarondl/null/v8"

	"optilab/internal/workflow"
	"optilab/pkg/constants"
)

type CreateJobDTO struct {
	ID              string `json:"id" validate:"required,max=64"`
	Description     string `json:"description" validate:"required,max=2000"`
	BranchID        string `json:"branch_id" validate:"omitempty,max=64"`
	BranchName      string `json:"branch_name" validate:"omitempty,max=255"`
	Priority        string `json:"priority" validate:"omitempty,job_priority"`
	PriorityMessage string `json:"priority_message" validate:"omitempty,max=500"`
	JobType         string `json:"job_type" validate:"omitempty,job_type"`
}

func (d CreateJobDTO) ToInput() workflow.NewJobInput {
	return workflow.NewJobInput{
		ID:              d.ID,
		Description:     d.Description,
		BranchID:        d.BranchID,
		BranchName:      d.BranchName,
		Priority:        constants.Priority(d.Priority),
		PriorityMessage: d.PriorityMessage,
		JobType:         constants.JobType(d.JobType),
	}
}

// UpdateJobDTO - частичное изменение. Отсутствующее поле не меняется.
type UpdateJobDTO struct {
	Status          null.String `json:"status" validate:"omitempty,job_status"`
	Priority        null.String `json:"priority" validate:"omitempty,job_priority"`
	PriorityMessage null.String `json:"priority_message" validate:"omitempty,max=500"`
	Description     null.String `json:"description" validate:"omitempty,max=2000"`
	BranchID        null.String `json:"branch_id" validate:"omitempty,max=64"`
	BranchName      null.String `json:"branch_name" validate:"omitempty,max=255"`
}

func (d UpdateJobDTO) ToChange() workflow.JobChange {
	var change workflow.JobChange
	if d.Status.Valid {
		s := constants.JobStatus(d.Status.String)
		change.Status = &s
	}
	if d.Priority.Valid {
		p := constants.Priority(d.Priority.String)
		change.Priority = &p
	}
	change.PriorityMessage = d.PriorityMessage.Ptr()
	change.Description = d.Description.Ptr()
	change.BranchID = d.BranchID.Ptr()
	change.BranchName = d.BranchName.Ptr()
	return change
}

type BulkStatusDTO struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
	Status string   `json:"status" validate:"required,job_status"`
}

type BulkStatusResultDTO struct {
	Requested int `json:"requested"`
	Updated   int `json:"updated"`
}
