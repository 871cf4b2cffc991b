package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
)

func TestNormalizeJobID(t *testing.T) {
	tests := []struct {
		id      string
		jobType constants.JobType
		branch  string
		want    string
	}{
		{"1001", constants.JobTypeNuevo, "cen", "CEN-1001"},
		{"CEN-1001", constants.JobTypeNuevo, "cen", "CEN-1001"},
		{"cen-1001", constants.JobTypeNuevo, "CEN", "cen-1001"},
		{" 77 ", constants.JobTypeReparacion, "cen", "77"},
		{"", constants.JobTypeNuevo, "cen", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeJobID(tt.id, tt.jobType, tt.branch), tt.id)
	}
}

func TestNewJob(t *testing.T) {
	job, err := NewJob(NewJobInput{
		ID: "1", Description: "  Lentes ", BranchName: "Centro",
		Priority: constants.PriorityUrgente, PriorityMessage: "VIP",
	}, branchX, t0)
	require.NoError(t, err)

	assert.Equal(t, "X-1", job.ID)
	assert.Equal(t, "X", job.BranchID)
	assert.Equal(t, "Lentes", job.Description)
	assert.Equal(t, constants.JobStatusPendingInBranch, job.Status)
	assert.Equal(t, constants.JobTypeNuevo, job.JobType)
	assert.Equal(t, "VIP", job.PriorityMessage.String)
	assert.Equal(t, job.CreatedAt, job.UpdatedAt)
	require.Len(t, job.History, 1)
	assert.Equal(t, constants.EventStatusChange, job.History[0].EventType)
	assert.False(t, job.History[0].OldValue.Valid)
}

func TestNewJob_Validation(t *testing.T) {
	_, err := NewJob(NewJobInput{ID: "1", Description: "a"}, lab, t0)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = NewJob(NewJobInput{ID: "1", Description: "a", BranchID: "Y"}, branchX, t0)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = NewJob(NewJobInput{ID: "1", Description: "a"}, admin, t0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = NewJob(NewJobInput{ID: "1", BranchID: "X"}, admin, t0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = NewJob(NewJobInput{Description: "a", BranchID: "X"}, admin, t0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	job, err := NewJob(NewJobInput{ID: "R-5", Description: "a", BranchID: "X", JobType: constants.JobTypeReparacion,
		PriorityMessage: "ignored"}, admin, t0)
	require.NoError(t, err)
	assert.Equal(t, "R-5", job.ID)
	assert.False(t, job.PriorityMessage.Valid)
}

func TestNewSparePartOrder(t *testing.T) {
	order, err := NewSparePartOrder(NewSparePartInput{Supplier: "Zeiss", Description: "Plaqueta", Notes: "urgente"}, branchX, t0)
	require.NoError(t, err)
	assert.Regexp(t, `^SP-[0-9A-F]{8}$`, order.ID)
	assert.Equal(t, "X", order.BranchID)
	assert.Equal(t, branchX.Username, order.RequestedBy)
	assert.Equal(t, constants.SparePartStatusOrdered, order.Status)
	assert.Equal(t, constants.OrderTypeChargeable, order.OrderType)
	assert.False(t, order.JobID.Valid)
	require.Len(t, order.History, 1)
	assert.Equal(t, "urgente", order.History[0].Notes.String)

	_, err = NewSparePartOrder(NewSparePartInput{Description: "Plaqueta"}, branchX, t0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = NewSparePartOrder(NewSparePartInput{Supplier: "Zeiss"}, branchX, t0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = NewSparePartOrder(NewSparePartInput{Supplier: "Zeiss", Description: "x"}, lab, t0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
