package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optilab/internal/entities"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

var (
	branchX = types.Actor{ID: "X", Username: "Филиал X", Role: constants.RoleBranch}
	branchY = types.Actor{ID: "Y", Username: "Филиал Y", Role: constants.RoleBranch}
	lab     = types.Actor{ID: "lab-1", Username: "Лаборатория", Role: constants.RoleLab}
	admin   = types.Actor{ID: "admin-1", Username: "Админ", Role: constants.RoleAdmin}

	t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func statusPtr(s constants.JobStatus) *constants.JobStatus { return &s }
func strPtr(s string) *string                               { return &s }

func newTestJob(t *testing.T, id string) *entities.Job {
	t.Helper()
	job, err := NewJob(NewJobInput{ID: id, Description: "Линзы", BranchID: "X", BranchName: "Центр"}, branchX, t0)
	require.NoError(t, err)
	return job
}

func TestApplyJobChange_ForbiddenScenario(t *testing.T) {
	job := newTestJob(t, "X-1")

	_, err := ApplyJobChange(job, JobChange{Status: statusPtr(constants.JobStatusSentToLab)}, branchX, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusSentToLab, job.Status)

	_, err = ApplyJobChange(job, JobChange{Status: statusPtr(constants.JobStatusReceivedByLab)}, branchX, t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, constants.JobStatusSentToLab, job.Status)
	assert.Len(t, job.History, 2)
}

func TestApplyJobChange_FullPath(t *testing.T) {
	job := newTestJob(t, "X-2")
	steps := []struct {
		actor  types.Actor
		target constants.JobStatus
	}{
		{branchX, constants.JobStatusSentToLab},
		{lab, constants.JobStatusReceivedByLab},
		{lab, constants.JobStatusCompleted},
		{lab, constants.JobStatusSentToBranch},
		{branchX, constants.JobStatusReceivedByBranch},
	}
	for i, step := range steps {
		now := t0.Add(time.Duration(i+1) * time.Hour)
		entries, err := ApplyJobChange(job, JobChange{Status: statusPtr(step.target)}, step.actor, now)
		require.NoError(t, err, "шаг %s", step.target)
		require.Len(t, entries, 1)
		assert.Equal(t, constants.EventStatusChange, entries[0].EventType)
		assert.Equal(t, string(step.target), entries[0].NewValue.String)
		assert.Equal(t, now, job.UpdatedAt)
		assert.Equal(t, step.actor.ID, entries[0].ActorID)
	}
	assert.Len(t, job.History, 6)
}

func TestApplyJobChange_SkipIsInvalidInput(t *testing.T) {
	job := newTestJob(t, "X-3")
	_, err := ApplyJobChange(job, JobChange{Status: statusPtr(constants.JobStatusCompleted)}, branchX, t0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestApplyJobChange_OtherBranchForbidden(t *testing.T) {
	job := newTestJob(t, "X-4")
	_, err := ApplyJobChange(job, JobChange{Status: statusPtr(constants.JobStatusSentToLab)}, branchY, t0)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestApplyJobChange_AdminOverride(t *testing.T) {
	job := newTestJob(t, "X-5")
	entries, err := ApplyJobChange(job, JobChange{Status: statusPtr(constants.JobStatusReceivedByBranch)}, admin, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.JobStatusReceivedByBranch, job.Status)

	_, err = ApplyJobChange(job, JobChange{Status: statusPtr(constants.JobStatusPendingInBranch)}, admin, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPendingInBranch, job.Status)
}

func TestApplyJobChange_SameStatusIsNoop(t *testing.T) {
	job := newTestJob(t, "X-6")
	before := job.UpdatedAt

	entries, err := ApplyJobChange(job, JobChange{Status: statusPtr(constants.JobStatusPendingInBranch)}, branchX, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Len(t, job.History, 1)
	assert.Equal(t, before, job.UpdatedAt)
}

func TestApplyJobChange_TimestampNeverGoesBack(t *testing.T) {
	job := newTestJob(t, "X-7")
	entries, err := ApplyJobChange(job, JobChange{Status: statusPtr(constants.JobStatusSentToLab)}, branchX, t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, t0, entries[0].CreatedAt)
	assert.Equal(t, t0, job.UpdatedAt)
}

func TestApplyJobChange_PriorityAndDescription(t *testing.T) {
	job := newTestJob(t, "X-8")
	now := t0.Add(time.Hour)

	p := constants.PriorityUrgente
	entries, err := ApplyJobChange(job, JobChange{
		Priority:        &p,
		PriorityMessage: strPtr("Клиент ждет"),
		Description:     strPtr("Линзы и оправа"),
	}, branchX, now)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, constants.EventPriorityChange, entries[0].EventType)
	assert.Equal(t, "Клиент ждет", entries[0].Message.String)
	assert.Equal(t, constants.EventDescriptionChange, entries[1].EventType)
	assert.Equal(t, entries[0].CreatedAt, entries[1].CreatedAt)
	assert.Equal(t, "Клиент ждет", job.PriorityMessage.String)

	normal := constants.PriorityNormal
	_, err = ApplyJobChange(job, JobChange{Priority: &normal}, lab, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, job.PriorityMessage.Valid)

	_, err = ApplyJobChange(job, JobChange{Description: strPtr("Другое")}, lab, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestApplyJobChange_BlankDescriptionRejected(t *testing.T) {
	job := newTestJob(t, "X-12")

	_, err := ApplyJobChange(job, JobChange{Description: strPtr("   ")}, branchX, t0.Add(time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, "Линзы", job.Description)
	assert.Len(t, job.History, 1)
	assert.Equal(t, t0, job.UpdatedAt)
}

func TestApplyJobChange_BranchTransferAdminOnly(t *testing.T) {
	job := newTestJob(t, "X-9")

	_, err := ApplyJobChange(job, JobChange{BranchID: strPtr("Y")}, branchX, t0)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	entries, err := ApplyJobChange(job, JobChange{BranchID: strPtr("Y"), BranchName: strPtr("Север")}, admin, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.EventBranchTransfer, entries[0].EventType)
	assert.Equal(t, "X", entries[0].OldValue.String)
	assert.Equal(t, "Y", job.BranchID)
	assert.Equal(t, "Север", job.BranchName)

	_, ok := entries[0].JobStatus()
	assert.False(t, ok)
}

func TestApplyBulkStatus_SkipsIneligible(t *testing.T) {
	a, b, c := newTestJob(t, "A"), newTestJob(t, "B"), newTestJob(t, "C")
	c.Status = constants.JobStatusCompleted

	updated := 0
	for _, job := range []*entities.Job{a, b, c} {
		_, err := ApplyBulkStatus(job, constants.JobStatusSentToLab, branchX, t0.Add(time.Hour))
		if err == ErrNotEligible {
			continue
		}
		require.NoError(t, err)
		updated++
	}
	assert.Equal(t, 2, updated)
	assert.Equal(t, constants.JobStatusCompleted, c.Status)
	assert.Len(t, c.History, 1)
}

func TestApplyBulkStatus_WrongRoleIsIneligible(t *testing.T) {
	job := newTestJob(t, "X-10")
	_, err := ApplyBulkStatus(job, constants.JobStatusSentToLab, lab, t0)
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = ApplyBulkStatus(job, constants.JobStatusSentToLab, branchY, t0)
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = ApplyBulkStatus(job, constants.JobStatusSentToLab, admin, t0)
	assert.NoError(t, err)
}

func newTestOrder(t *testing.T) *entities.SparePartOrder {
	t.Helper()
	order, err := NewSparePartOrder(NewSparePartInput{
		ID: "SP-1", Supplier: "Essilor", Description: "Петля", JobID: "R-1",
	}, branchX, t0)
	require.NoError(t, err)
	return order
}

func TestApplySparePartChange(t *testing.T) {
	order := newTestOrder(t)
	next := func(s constants.SparePartStatus) SparePartChange { return SparePartChange{Status: &s} }

	_, err := ApplySparePartChange(order, next(constants.SparePartStatusReceivedCentral), branchX, t0)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = ApplySparePartChange(order, next(constants.SparePartStatusSentToBranch), lab, t0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	change := next(constants.SparePartStatusReceivedCentral)
	change.Notes = strPtr("Пришло на склад")
	entries, err := ApplySparePartChange(order, change, lab, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Пришло на склад", entries[0].Notes.String)
	assert.Equal(t, "Пришло на склад", order.Notes.String)

	_, err = ApplySparePartChange(order, next(constants.SparePartStatusCancelled), lab, t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = ApplySparePartChange(order, next(constants.SparePartStatusSentToBranch), admin, t0.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = ApplySparePartChange(order, next(constants.SparePartStatusReceivedByBranch), branchX, t0.Add(3*time.Hour))
	require.NoError(t, err)
	assert.False(t, order.IsActive())
}

func TestApplySparePartChange_NoteOnly(t *testing.T) {
	order := newTestOrder(t)
	entries, err := ApplySparePartChange(order, SparePartChange{Notes: strPtr("Позвонить поставщику")}, branchX, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.EventNote, entries[0].EventType)

	entries, err = ApplySparePartChange(order, SparePartChange{Notes: strPtr("  ")}, branchX, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestValidateSparePartLink(t *testing.T) {
	order := newTestOrder(t)
	job := newTestJob(t, "X-11")
	assert.ErrorIs(t, ValidateSparePartLink(order, job, nil), apperrors.ErrInvalidInput)

	job.JobType = constants.JobTypeReparacion
	assert.NoError(t, ValidateSparePartLink(order, job, nil))
	assert.ErrorIs(t, ValidateSparePartLink(order, job, newTestOrder(t)), apperrors.ErrConflict)
	assert.ErrorIs(t, ValidateSparePartLink(order, nil, nil), apperrors.ErrInvalidInput)

	job.BranchID = "Y"
	assert.ErrorIs(t, ValidateSparePartLink(order, job, newTestOrder(t)), apperrors.ErrForbidden)
}
