package dto

import (
	"github.com/aarondl/null/v8"

	"optilab/internal/workflow"
	"optilab/pkg/constants"
)

type CreateSparePartDTO struct {
	ID             string `json:"id" validate:"omitempty,max=64"`
	BranchID       string `json:"branch_id" validate:"omitempty,max=64"`
	BranchName     string `json:"branch_name" validate:"omitempty,max=255"`
	Supplier       string `json:"supplier" validate:"required,max=255"`
	Description    string `json:"description" validate:"required,max=2000"`
	RequestedBy    string `json:"requested_by" validate:"omitempty,max=255"`
	OrderReference string `json:"order_reference" validate:"omitempty,max=255"`
	Notes          string `json:"notes" validate:"omitempty,max=2000"`
	Priority       string `json:"priority" validate:"omitempty,spare_priority"`
	OrderType      string `json:"order_type" validate:"omitempty,spare_order_type"`
	JobID          string `json:"job_id" validate:"omitempty,max=64"`
}

func (d CreateSparePartDTO) ToInput() workflow.NewSparePartInput {
	return workflow.NewSparePartInput{
		ID:             d.ID,
		BranchID:       d.BranchID,
		BranchName:     d.BranchName,
		Supplier:       d.Supplier,
		Description:    d.Description,
		RequestedBy:    d.RequestedBy,
		OrderReference: d.OrderReference,
		Notes:          d.Notes,
		Priority:       constants.SparePartPriority(d.Priority),
		OrderType:      constants.SparePartOrderType(d.OrderType),
		JobID:          d.JobID,
	}
}

type UpdateSparePartDTO struct {
	Status null.String `json:"status" validate:"omitempty,spare_status"`
	Notes  null.String `json:"notes" validate:"omitempty,max=2000"`
}

func (d UpdateSparePartDTO) ToChange() workflow.SparePartChange {
	var change workflow.SparePartChange
	if d.Status.Valid {
		s := constants.SparePartStatus(d.Status.String)
		change.Status = &s
	}
	change.Notes = d.Notes.Ptr()
	return change
}
