package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optilab/internal/entities"
	"optilab/internal/workflow"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

var (
	testAdmin  = types.Actor{ID: "admin", Username: "Админ", Role: constants.RoleAdmin}
	testBranch = types.Actor{ID: "X", Username: "Филиал X", Role: constants.RoleBranch}
	testNow    = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func seedJob(t *testing.T, s *MemoryStore, id string, jobType constants.JobType) *entities.Job {
	t.Helper()
	job, err := workflow.NewJob(workflow.NewJobInput{ID: id, Description: "d", BranchID: "X", JobType: jobType}, testAdmin, testNow)
	require.NoError(t, err)
	require.NoError(t, s.CreateJob(context.Background(), job))
	return job
}

func TestMemoryStore_CreateConflict(t *testing.T) {
	s := NewMemoryStore()
	job := seedJob(t, s, "X-1", constants.JobTypeNuevo)
	assert.ErrorIs(t, s.CreateJob(context.Background(), job), apperrors.ErrConflict)

	_, err := s.FindJob(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	seedJob(t, s, "X-1", constants.JobTypeNuevo)

	got, err := s.FindJob(context.Background(), "X-1")
	require.NoError(t, err)
	got.Status = constants.JobStatusCompleted
	got.History = append(got.History, entities.HistoryEntry{})

	again, err := s.FindJob(context.Background(), "X-1")
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPendingInBranch, again.Status)
	assert.Len(t, again.History, 1)
}

func TestMemoryStore_ConcurrentUpdatesKeepEveryEntry(t *testing.T) {
	s := NewMemoryStore()
	seedJob(t, s, "X-1", constants.JobTypeNuevo)

	targets := []constants.JobStatus{constants.JobStatusCompleted, constants.JobStatusSentToBranch}
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target constants.JobStatus) {
			defer wg.Done()
			_, err := s.UpdateJob(context.Background(), "X-1", func(job *entities.Job) ([]entities.HistoryEntry, error) {
				return workflow.ApplyJobChange(job, workflow.JobChange{Status: &target}, testAdmin, time.Now())
			})
			assert.NoError(t, err)
		}(target)
	}
	wg.Wait()

	job, err := s.FindJob(context.Background(), "X-1")
	require.NoError(t, err)
	assert.Len(t, job.History, 3)
	assert.Contains(t, targets, job.Status)
	last := workflow.SortAsc(job.History)[2]
	assert.Equal(t, string(job.Status), last.NewValue.String)
}

func TestMemoryStore_UpdateJobsIsAllOrNothing(t *testing.T) {
	s := NewMemoryStore()
	seedJob(t, s, "X-1", constants.JobTypeNuevo)
	seedJob(t, s, "X-2", constants.JobTypeNuevo)

	boom := errors.New("boom")
	calls := 0
	_, err := s.UpdateJobs(context.Background(), []string{"X-1", "X-2"}, func(job *entities.Job) ([]entities.HistoryEntry, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return workflow.ApplyBulkStatus(job, constants.JobStatusSentToLab, testBranch, testNow.Add(time.Hour))
	})
	assert.ErrorIs(t, err, boom)

	job, err := s.FindJob(context.Background(), "X-1")
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPendingInBranch, job.Status)
}

func TestMemoryStore_UpdateJobsSkipsIneligibleAndUnknown(t *testing.T) {
	s := NewMemoryStore()
	seedJob(t, s, "X-1", constants.JobTypeNuevo)
	seedJob(t, s, "X-2", constants.JobTypeNuevo)
	_, err := s.UpdateJob(context.Background(), "X-2", func(job *entities.Job) ([]entities.HistoryEntry, error) {
		target := constants.JobStatusCompleted
		return workflow.ApplyJobChange(job, workflow.JobChange{Status: &target}, testAdmin, testNow)
	})
	require.NoError(t, err)

	updated, err := s.UpdateJobs(context.Background(), []string{"X-1", "X-2", "missing"}, func(job *entities.Job) ([]entities.HistoryEntry, error) {
		return workflow.ApplyBulkStatus(job, constants.JobStatusSentToLab, testBranch, testNow.Add(time.Hour))
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "X-1", updated[0].ID)
}

func TestMemoryStore_SparePartLinkAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedJob(t, s, "X-1", constants.JobTypeNuevo)
	seedJob(t, s, "R-1", constants.JobTypeReparacion)

	newOrder := func(id, jobID string) *entities.SparePartOrder {
		o, err := workflow.NewSparePartOrder(workflow.NewSparePartInput{
			ID: id, Supplier: "Zeiss", Description: "Plaqueta", JobID: jobID,
		}, testBranch, testNow)
		require.NoError(t, err)
		return o
	}

	assert.ErrorIs(t, s.CreateSparePart(ctx, newOrder("SP-0", "X-1")), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, s.CreateSparePart(ctx, newOrder("SP-0", "missing")), apperrors.ErrInvalidInput)
	require.NoError(t, s.CreateSparePart(ctx, newOrder("SP-1", "R-1")))
	assert.ErrorIs(t, s.CreateSparePart(ctx, newOrder("SP-2", "R-1")), apperrors.ErrConflict)

	active, err := s.FindActiveByJobID(ctx, "R-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "SP-1", active.ID)

	unlinked, err := s.DeleteJob(ctx, "R-1", testAdmin, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"SP-1"}, unlinked)

	order, err := s.FindSparePart(ctx, "SP-1")
	require.NoError(t, err)
	assert.False(t, order.JobID.Valid)
	require.Len(t, order.History, 2)
	assert.Equal(t, constants.EventNote, order.History[1].EventType)

	_, err = s.FindJob(ctx, "R-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.DeleteJob(ctx, "R-1", testAdmin, testNow)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
