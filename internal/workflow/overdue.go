package workflow

import (
	"slices"
	"time"

	"optilab/internal/entities"
	"optilab/pkg/constants"
)

// OverdueStatuses - статусы с контролем SLA: SentToLab ждет лабораторию, SentToBranch - филиал.
var OverdueStatuses = []constants.JobStatus{
	constants.JobStatusSentToLab,
	constants.JobStatusSentToBranch,
}

type OverdueJob struct {
	Job           entities.Job `json:"job"`
	Since         time.Time    `json:"since"`
	BusinessHours int          `json:"business_hours"`
}

// FindOverdue отбирает работы, которые стоят в контролируемом статусе дольше threshold
// рабочих часов с последней записи о переходе в этот статус. Работы без такой записи пропускаются.
// Журнал берется из history[job.ID], а при его отсутствии из job.History.
func FindOverdue(jobs []entities.Job, history map[string][]entities.HistoryEntry, cal *Calendar, threshold int) []OverdueJob {
	if threshold <= 0 {
		threshold = constants.DefaultOverdueThresholdHours
	}

	result := make([]OverdueJob, 0)
	for _, job := range jobs {
		if !slices.Contains(OverdueStatuses, job.Status) {
			continue
		}
		entries, ok := history[job.ID]
		if !ok {
			entries = job.History
		}
		since, found := lastStatusEntry(entries, job.Status)
		if !found {
			continue
		}
		hours := cal.BusinessHoursSince(since)
		if hours > threshold {
			result = append(result, OverdueJob{Job: job, Since: since, BusinessHours: hours})
		}
	}
	return result
}

func lastStatusEntry(entries []entities.HistoryEntry, status constants.JobStatus) (time.Time, bool) {
	var (
		latest time.Time
		found  bool
	)
	for _, e := range entries {
		s, ok := e.JobStatus()
		if !ok || s != status {
			continue
		}
		if !found || e.CreatedAt.After(latest) {
			latest = e.CreatedAt
			found = true
		}
	}
	return latest, found
}
