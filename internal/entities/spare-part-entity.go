package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"optilab/pkg/constants"
)

type SparePartOrder struct {
	ID             string                       `json:"id" db:"id"`
	BranchID       string                       `json:"branch_id" db:"branch_id"`
	BranchName     string                       `json:"branch_name" db:"branch_name"`
	Supplier       string                       `json:"supplier" db:"supplier"`
	Description    string                       `json:"description" db:"description"`
	RequestedBy    string                       `json:"requested_by" db:"requested_by"`
	OrderReference null.String                  `json:"order_reference" db:"order_reference"`
	Notes          null.String                  `json:"notes" db:"notes"`
	Status         constants.SparePartStatus    `json:"status" db:"status"`
	Priority       constants.SparePartPriority  `json:"priority" db:"priority"`
	OrderType      constants.SparePartOrderType `json:"order_type" db:"order_type"`
	JobID          null.String                  `json:"job_id" db:"job_id"`
	CreatedAt      time.Time                    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at" db:"updated_at"`

	History []HistoryEntry `json:"history,omitempty" db:"-"`
}

func (o SparePartOrder) Clone() SparePartOrder {
	c := o
	if o.History != nil {
		c.History = append([]HistoryEntry(nil), o.History...)
	}
	return c
}

// IsActive - заказ еще движется по цепочке.
func (o SparePartOrder) IsActive() bool {
	return !o.Status.IsTerminal()
}
