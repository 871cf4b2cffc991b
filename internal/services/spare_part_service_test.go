package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optilab/internal/workflow"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
)

func spareStatus(s constants.SparePartStatus) *constants.SparePartStatus { return &s }

func TestSparePartService_Chain(t *testing.T) {
	env := newTestEnv(t)
	order, err := env.spares.CreateSparePart(as(branchX), workflow.NewSparePartInput{
		Supplier: "Essilor", Description: "Cristal", Notes: "urgente para cliente",
	})
	require.NoError(t, err)
	assert.Equal(t, "X", order.BranchID)
	assert.Equal(t, "Филиал X", order.RequestedBy)
	assert.Equal(t, constants.OrderTypeChargeable, order.OrderType)

	_, err = env.spares.UpdateSparePart(as(branchX), order.ID, workflow.SparePartChange{Status: spareStatus(constants.SparePartStatusReceivedCentral)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	env.clock.Advance(time.Hour)
	_, err = env.spares.UpdateSparePart(as(lab), order.ID, workflow.SparePartChange{
		Status: spareStatus(constants.SparePartStatusReceivedCentral),
		Notes:  strPtr("llegó"),
	})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.spares.UpdateSparePart(as(lab), order.ID, workflow.SparePartChange{Status: spareStatus(constants.SparePartStatusSentToBranch)})
	require.NoError(t, err)

	_, err = env.spares.UpdateSparePart(as(branchY), order.ID, workflow.SparePartChange{Status: spareStatus(constants.SparePartStatusReceivedByBranch)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	env.clock.Advance(time.Hour)
	got, err := env.spares.UpdateSparePart(as(branchX), order.ID, workflow.SparePartChange{Status: spareStatus(constants.SparePartStatusReceivedByBranch)})
	require.NoError(t, err)
	assert.Equal(t, constants.SparePartStatusReceivedByBranch, got.Status)
	assert.Equal(t, "urgente para cliente\nllegó", got.Notes.String)
	require.Len(t, got.History, 4)
	assert.Equal(t, string(constants.SparePartStatusReceivedByBranch), got.History[0].NewValue.String)
	assert.Equal(t, "llegó", got.History[2].Notes.String)

	_, err = env.spares.UpdateSparePart(as(lab), order.ID, workflow.SparePartChange{Status: spareStatus(constants.SparePartStatusCancelled)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSparePartService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.jobs.CreateJob(as(branchX), workflow.NewJobInput{ID: "5", Description: "d"})
	require.NoError(t, err)

	_, err = env.spares.CreateSparePart(as(branchX), workflow.NewSparePartInput{Description: "d"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.spares.CreateSparePart(as(branchX), workflow.NewSparePartInput{Supplier: "Zeiss", Description: "d", JobID: "X-5"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.spares.CreateSparePart(as(branchX), workflow.NewSparePartInput{Supplier: "Zeiss", Description: "d", BranchID: "Y"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.spares.CreateSparePart(as(lab), workflow.NewSparePartInput{ID: "SP-1", Supplier: "Zeiss", Description: "d", BranchID: "Y"})
	require.NoError(t, err)
	_, err = env.spares.CreateSparePart(as(lab), workflow.NewSparePartInput{ID: "SP-1", Supplier: "Zeiss", Description: "d", BranchID: "Y"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSparePartService_LinkStaysWithinBranch(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.jobs.CreateJob(as(branchY), workflow.NewJobInput{ID: "R1", Description: "Bisagra", JobType: constants.JobTypeReparacion})
	require.NoError(t, err)

	_, err = env.spares.CreateSparePart(as(branchX), workflow.NewSparePartInput{ID: "SP-X", Supplier: "Zeiss", Description: "d", JobID: "R1"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.spares.CreateSparePart(as(lab), workflow.NewSparePartInput{ID: "SP-L", Supplier: "Zeiss", Description: "d", BranchID: "X", JobID: "R1"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.spares.GetSparePart(as(admin), "SP-X")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	job, err := env.jobs.GetJob(as(branchY), "R1")
	require.NoError(t, err)
	assert.Nil(t, job.LinkedSparePart)

	order, err := env.spares.CreateSparePart(as(branchY), workflow.NewSparePartInput{ID: "SP-Y", Supplier: "Zeiss", Description: "d", JobID: "R1"})
	require.NoError(t, err)
	assert.Equal(t, "R1", order.JobID.String)
}

func TestSparePartService_ListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	for _, branch := range []string{"X", "Y"} {
		_, err := env.spares.CreateSparePart(as(admin), workflow.NewSparePartInput{
			ID: "SP-" + branch, Supplier: "Zeiss", Description: "d", BranchID: branch,
		})
		require.NoError(t, err)
	}

	orders, page, err := env.spares.ListSpareParts(as(branchY), workflow.SparePartQuery{Statuses: []string{"ACTIVE"}})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "SP-Y", orders[0].ID)
	assert.Equal(t, uint64(1), page.TotalCount)

	assert.ErrorIs(t, env.spares.DeleteSparePart(as(lab), "SP-Y"), apperrors.ErrForbidden)
	require.NoError(t, env.spares.DeleteSparePart(as(admin), "SP-Y"))
	_, err = env.spares.GetSparePart(as(admin), "SP-Y")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
