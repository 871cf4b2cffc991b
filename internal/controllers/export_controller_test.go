package controllers

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"optilab/internal/entities"
	"optilab/pkg/constants"
)

func TestBuildJobsWorkbook(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	ctrl := NewExportController(nil, loc, zap.NewNop())
	created := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	jobs := []entities.Job{
		{
			ID: "X-1", BranchName: "Centro", Description: "Lentes", JobType: constants.JobTypeNuevo,
			Status: constants.JobStatusSentToLab, Priority: constants.PriorityUrgente,
			PriorityMessage: null.StringFrom("Cliente viaja"), CreatedAt: created, UpdatedAt: created.Add(time.Hour),
		},
		{
			ID: "R-2", BranchName: "Norte", Description: "Bisagra", JobType: constants.JobTypeReparacion,
			Status: constants.JobStatusPendingInBranch, Priority: constants.PriorityNormal,
			CreatedAt: created, UpdatedAt: created,
		},
	}

	f, err := ctrl.buildJobsWorkbook(jobs)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Работы")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, jobExportHeaders, rows[0])
	assert.Equal(t, []string{"1", "X-1", "Centro", "Lentes", "Nuevo", "SentToLab", "Urgente", "Cliente viaja", "02.03.2026 09:00", "02.03.2026 10:00"}, rows[1])
	assert.Equal(t, "R-2", rows[2][1])

	width, err := f.GetColWidth("Работы", "D")
	require.NoError(t, err)
	assert.Equal(t, 45.0, width)
}
