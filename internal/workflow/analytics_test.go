package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optilab/internal/entities"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
)

func jobWithHistory(id, branch string, priority constants.Priority, created time.Time, steps ...interface{}) entities.Job {
	job := entities.Job{
		ID:         id,
		BranchID:   branch,
		BranchName: branch,
		Status:     constants.JobStatusPendingInBranch,
		Priority:   priority,
		JobType:    constants.JobTypeNuevo,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	// steps: пары (смещение в часах, статус или EventType).
	for i := 0; i+1 < len(steps); i += 2 {
		ts := created.Add(time.Duration(steps[i].(int)) * time.Hour)
		switch v := steps[i+1].(type) {
		case constants.JobStatus:
			job.History = append(job.History, StatusChanged(id, "", string(v), admin, ts))
			job.Status = v
		case constants.EventType:
			job.History = append(job.History, DescriptionEdited(id, "a", "b", admin, ts))
		}
		job.UpdatedAt = ts
	}
	return job
}

func TestComputeStats(t *testing.T) {
	jan := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)

	jobs := []entities.Job{
		jobWithHistory("A-1", "A", constants.PriorityNormal, jan,
			0, constants.JobStatusPendingInBranch,
			2, constants.JobStatusSentToLab,
			12, constants.JobStatusCompleted),
		jobWithHistory("A-2", "A", constants.PriorityRepeticion, feb,
			0, constants.JobStatusPendingInBranch,
			4, constants.EventDescriptionChange,
			6, constants.JobStatusSentToLab,
			26, constants.JobStatusCompleted),
		// Без Completed: не участвует в цикле.
		jobWithHistory("B-1", "B", constants.PriorityUrgente, feb,
			0, constants.JobStatusPendingInBranch,
			1, constants.JobStatusSentToLab),
	}

	st := ComputeStats(jobs, nil, time.UTC)

	assert.Equal(t, 3, st.TotalJobs)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, st.JobsByBranch)
	assert.Equal(t, map[string]int{"Normal": 1, "Repeticion": 1, "Urgente": 1}, st.JobsByPriority)
	assert.Equal(t, 2, st.JobsByStatus["Completed"])
	assert.Equal(t, "A", st.MostActiveBranch)
	assert.InDelta(t, 100.0/3, st.RepetitionRate, 1e-9)

	assert.Equal(t, 2, st.CycleTimeJobs)
	assert.InDelta(t, 15.0, st.AverageCycleTime, 1e-9)
	assert.InDelta(t, 15.0, st.CycleTimeByBranch["A"], 1e-9)
	_, hasB := st.CycleTimeByBranch["B"]
	assert.False(t, hasB)

	// PendingInBranch: A-1 = 2ч, A-2 = 4ч (до правки описания), B-1 = 1ч.
	assert.InDelta(t, 7.0/3, st.AverageTimeInStatus["PendingInBranch"], 1e-9)
	// SentToLab: A-1 = 10ч, A-2 = 20ч, B-1 без следующей записи.
	assert.InDelta(t, 15.0, st.AverageTimeInStatus["SentToLab"], 1e-9)
	_, hasCompleted := st.AverageTimeInStatus["Completed"]
	assert.False(t, hasCompleted)

	require.Len(t, st.MonthlyProgress, 2)
	assert.Equal(t, "2026-01", st.MonthlyProgress[0].Month)
	assert.Equal(t, 1, st.MonthlyProgress[0].Total)
	assert.Equal(t, "2026-02", st.MonthlyProgress[1].Month)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, st.MonthlyProgress[1].ByBranch)
}

func TestComputeStats_SortsHistory(t *testing.T) {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	job := jobWithHistory("A-1", "A", constants.PriorityNormal, created,
		0, constants.JobStatusPendingInBranch,
		3, constants.JobStatusSentToLab,
		9, constants.JobStatusCompleted)
	job.History[0], job.History[2] = job.History[2], job.History[0]

	st := ComputeStats([]entities.Job{job}, nil, time.UTC)
	assert.InDelta(t, 6.0, st.AverageCycleTime, 1e-9)
}

func TestComputeStats_CompletedBeforeSentIgnored(t *testing.T) {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	job := jobWithHistory("A-1", "A", constants.PriorityNormal, created,
		1, constants.JobStatusCompleted,
		3, constants.JobStatusSentToLab)

	st := ComputeStats([]entities.Job{job}, nil, time.UTC)
	assert.Zero(t, st.CycleTimeJobs)
	assert.Zero(t, st.AverageCycleTime)
}

func TestComputeStats_HistoryMapOverridesEmbedded(t *testing.T) {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	job := jobWithHistory("A-1", "A", constants.PriorityNormal, created,
		0, constants.JobStatusSentToLab,
		5, constants.JobStatusCompleted)
	history := map[string][]entities.HistoryEntry{"A-1": job.History}
	job.History = nil

	st := ComputeStats([]entities.Job{job}, history, time.UTC)
	assert.InDelta(t, 5.0, st.AverageCycleTime, 1e-9)
}

func TestComputeStats_Empty(t *testing.T) {
	st := ComputeStats(nil, nil, time.UTC)
	assert.Zero(t, st.TotalJobs)
	assert.Zero(t, st.RepetitionRate)
	assert.NotNil(t, st.JobsByBranch)
	assert.Empty(t, st.MonthlyProgress)
}

func TestComputeStats_MostActiveFirstSeen(t *testing.T) {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	jobs := []entities.Job{
		jobWithHistory("B-1", "B", constants.PriorityNormal, created),
		jobWithHistory("A-1", "A", constants.PriorityNormal, created),
	}
	assert.Equal(t, "B", ComputeStats(jobs, nil, time.UTC).MostActiveBranch)
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 50.0, PercentChange(15, 10), 1e-9)
	assert.InDelta(t, -50.0, PercentChange(5, 10), 1e-9)
	assert.Equal(t, 100.0, PercentChange(3, 0))
	assert.Equal(t, 0.0, PercentChange(0, 0))
}

func TestPreviousWindow(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 23, 59, 59, int(999*time.Millisecond), time.UTC)

	prevFrom, prevTo, err := PreviousWindow(from, to)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC), prevFrom)
	assert.Equal(t, time.Date(2026, 2, 28, 23, 59, 59, int(999*time.Millisecond), time.UTC), prevTo)

	_, _, err = PreviousWindow(to, from)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
