package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optilab/internal/events"
	"optilab/internal/workflow"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/eventbus"
)

func TestJobService_FullLifecycle(t *testing.T) {
	env := newTestEnv(t)

	job, err := env.jobs.CreateJob(as(branchX), workflow.NewJobInput{ID: "7", Description: "Lentes progresivos"})
	require.NoError(t, err)
	assert.Equal(t, "X-7", job.ID)
	assert.Equal(t, constants.JobStatusPendingInBranch, job.Status)

	steps := []struct {
		actor  string
		target constants.JobStatus
	}{
		{"X", constants.JobStatusSentToLab},
		{"lab", constants.JobStatusReceivedByLab},
		{"lab", constants.JobStatusCompleted},
		{"lab", constants.JobStatusSentToBranch},
		{"X", constants.JobStatusReceivedByBranch},
	}
	for _, step := range steps {
		env.clock.Advance(time.Hour)
		ctx := as(lab)
		if step.actor == "X" {
			ctx = as(branchX)
		}
		job, err = env.jobs.UpdateJob(ctx, "X-7", workflow.JobChange{Status: statusPtr(step.target)})
		require.NoError(t, err, step.target)
		assert.Equal(t, step.target, job.Status)
	}

	history, err := env.jobs.GetHistory(as(admin), "X-7")
	require.NoError(t, err)
	require.Len(t, history, 6)
	assert.Equal(t, string(constants.JobStatusReceivedByBranch), history[0].NewValue.String)
	assert.False(t, history[5].OldValue.Valid)
	assert.Equal(t, t0.Add(5*time.Hour), job.UpdatedAt)
}

func TestJobService_WrongRoleIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.jobs.CreateJob(as(branchX), workflow.NewJobInput{ID: "1", Description: "d"})
	require.NoError(t, err)

	_, err = env.jobs.UpdateJob(as(lab), "X-1", workflow.JobChange{Status: statusPtr(constants.JobStatusSentToLab)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.jobs.UpdateJob(as(branchX), "X-1", workflow.JobChange{Status: statusPtr(constants.JobStatusCompleted)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.jobs.UpdateJob(as(branchY), "X-1", workflow.JobChange{Status: statusPtr(constants.JobStatusSentToLab)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	job, err := env.jobs.GetJob(as(admin), "X-1")
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPendingInBranch, job.Status)
	assert.Len(t, job.History, 1)
}

func TestJobService_NoOpAndEmptyChange(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.jobs.CreateJob(as(branchX), workflow.NewJobInput{ID: "1", Description: "d"})
	require.NoError(t, err)

	_, err = env.jobs.UpdateJob(as(branchX), "X-1", workflow.JobChange{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	env.clock.Advance(time.Hour)
	job, err := env.jobs.UpdateJob(as(branchX), "X-1", workflow.JobChange{
		Status:      statusPtr(constants.JobStatusPendingInBranch),
		Description: strPtr("d"),
	})
	require.NoError(t, err)
	assert.Len(t, job.History, 1)
	assert.Equal(t, created.UpdatedAt, job.UpdatedAt)

	_, err = env.jobs.UpdateJob(as(branchX), "X-1", workflow.JobChange{Description: strPtr("   ")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	stored, err := env.jobs.GetJob(as(branchX), "X-1")
	require.NoError(t, err)
	assert.Equal(t, "d", stored.Description)
	assert.Len(t, stored.History, 1)
}

func TestJobService_BulkTransitionSkipsIneligible(t *testing.T) {
	env := newTestEnv(t)
	for _, id := range []string{"1", "2", "3"} {
		_, err := env.jobs.CreateJob(as(branchX), workflow.NewJobInput{ID: id, Description: "d"})
		require.NoError(t, err)
	}
	_, err := env.jobs.UpdateJob(as(branchX), "X-3", workflow.JobChange{Status: statusPtr(constants.JobStatusSentToLab)})
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		got []events.JobChangedEvent
	)
	env.bus.Subscribe(events.JobChangedName, func(ctx context.Context, e eventbus.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(events.JobChangedEvent))
		return nil
	})

	env.clock.Advance(time.Hour)
	n, err := env.jobs.BulkTransition(as(branchX), []string{"X-1", "X-2", "X-3", "X-1", "missing"}, constants.JobStatusSentToLab)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	env.bus.Wait()
	mu.Lock()
	require.Len(t, got, 1)
	assert.ElementsMatch(t, []string{"X-1", "X-2"}, got[0].JobIDs)
	mu.Unlock()

	job, err := env.jobs.GetJob(as(admin), "X-3")
	require.NoError(t, err)
	assert.Len(t, job.History, 2)

	_, err = env.jobs.BulkTransition(as(branchX), []string{" ", ""}, constants.JobStatusSentToLab)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestJobService_GetJobScopeAndLinkedSparePart(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.jobs.CreateJob(as(branchX), workflow.NewJobInput{ID: "R-1", Description: "Bisagra", JobType: constants.JobTypeReparacion})
	require.NoError(t, err)

	_, err = env.jobs.GetJob(as(branchY), "R-1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	order, err := env.spares.CreateSparePart(as(branchX), workflow.NewSparePartInput{
		Supplier: "Zeiss", Description: "Bisagra", JobID: "R-1",
	})
	require.NoError(t, err)

	job, err := env.jobs.GetJob(as(branchX), "R-1")
	require.NoError(t, err)
	require.NotNil(t, job.LinkedSparePart)
	assert.Equal(t, order.ID, job.LinkedSparePart.ID)

	cancelled := constants.SparePartStatusCancelled
	_, err = env.spares.UpdateSparePart(as(branchX), order.ID, workflow.SparePartChange{Status: &cancelled})
	require.NoError(t, err)

	job, err = env.jobs.GetJob(as(branchX), "R-1")
	require.NoError(t, err)
	assert.Nil(t, job.LinkedSparePart)
}

func TestJobService_DeleteJob(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.jobs.CreateJob(as(branchX), workflow.NewJobInput{ID: "R-1", Description: "d", JobType: constants.JobTypeReparacion})
	require.NoError(t, err)
	order, err := env.spares.CreateSparePart(as(branchX), workflow.NewSparePartInput{Supplier: "Zeiss", Description: "d", JobID: "R-1"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.jobs.DeleteJob(as(branchX), "R-1"), apperrors.ErrForbidden)
	env.clock.Advance(time.Hour)
	require.NoError(t, env.jobs.DeleteJob(as(admin), "R-1"))
	assert.ErrorIs(t, env.jobs.DeleteJob(as(admin), "R-1"), apperrors.ErrNotFound)

	got, err := env.spares.GetSparePart(as(admin), order.ID)
	require.NoError(t, err)
	assert.False(t, got.JobID.Valid)
	assert.Equal(t, constants.EventNote, got.History[0].EventType)
}

func TestJobService_ListJobsScopesBranch(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.jobs.CreateJob(as(branchX), workflow.NewJobInput{ID: "1", Description: "d"})
	require.NoError(t, err)
	_, err = env.jobs.CreateJob(as(branchY), workflow.NewJobInput{ID: "1", Description: "d"})
	require.NoError(t, err)

	_, _, err = env.jobs.ListJobs(as(branchX), workflow.JobQuery{BranchID: "Y"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	jobs, page, err := env.jobs.ListJobs(as(branchX), workflow.JobQuery{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "X-1", jobs[0].ID)
	assert.Equal(t, uint64(1), page.TotalCount)

	jobs, page, err = env.jobs.ListJobs(as(lab), workflow.JobQuery{Sort: workflow.SortIDAsc, PageSize: 1, Page: 2})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Y-1", jobs[0].ID)
	assert.Equal(t, 2, page.TotalPages)
}

func TestJobService_RequiresActor(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.jobs.CreateJob(context.Background(), workflow.NewJobInput{ID: "1", Description: "d"})
	assert.ErrorIs(t, err, apperrors.ErrActorNotFoundInContext)
}
