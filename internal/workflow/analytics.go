package workflow

import (
	"slices"
	"time"

	"optilab/internal/entities"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
)

const msPerHour = float64(time.Hour / time.Millisecond)

type MonthlyProgress struct {
	Month    string         `json:"month"`
	Total    int            `json:"total"`
	ByBranch map[string]int `json:"by_branch"`
}

type Stats struct {
	TotalJobs           int                `json:"total_jobs"`
	JobsByBranch        map[string]int     `json:"jobs_by_branch"`
	JobsByPriority      map[string]int     `json:"jobs_by_priority"`
	JobsByStatus        map[string]int     `json:"jobs_by_status"`
	MonthlyProgress     []MonthlyProgress  `json:"monthly_progress"`
	MostActiveBranch    string             `json:"most_active_branch"`
	RepetitionRate      float64            `json:"repetition_rate"`
	AverageCycleTime    float64            `json:"average_cycle_time"`
	CycleTimeJobs       int                `json:"cycle_time_jobs"`
	CycleTimeByBranch   map[string]float64 `json:"cycle_time_by_branch"`
	AverageTimeInStatus map[string]float64 `json:"average_time_in_status"`
}

type StatsDeltas struct {
	TotalJobs        float64 `json:"total_jobs"`
	RepetitionRate   float64 `json:"repetition_rate"`
	AverageCycleTime float64 `json:"average_cycle_time"`
}

func branchKey(job entities.Job) string {
	if job.BranchName != "" {
		return job.BranchName
	}
	return job.BranchID
}

func hoursBetween(from, to time.Time) float64 {
	return float64(to.Sub(from).Milliseconds()) / msPerHour
}

// ComputeStats считает показатели по уже отфильтрованному набору работ.
// Часы - разница в миллисекундах / 3 600 000, выходные считаются. Округления нет.
func ComputeStats(jobs []entities.Job, history map[string][]entities.HistoryEntry, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	st := Stats{
		TotalJobs:           len(jobs),
		JobsByBranch:        make(map[string]int),
		JobsByPriority:      make(map[string]int),
		JobsByStatus:        make(map[string]int),
		MonthlyProgress:     make([]MonthlyProgress, 0),
		CycleTimeByBranch:   make(map[string]float64),
		AverageTimeInStatus: make(map[string]float64),
	}
	if len(jobs) == 0 {
		return st
	}

	var (
		branchOrder []string
		months      = make(map[string]*MonthlyProgress)
		repetitions int

		cycleSum      float64
		branchCycle   = make(map[string]float64)
		branchSamples = make(map[string]int)

		statusHours = make(map[constants.JobStatus]float64)
		statusJobs  = make(map[constants.JobStatus]int)
	)

	for _, job := range jobs {
		branch := branchKey(job)
		if _, seen := st.JobsByBranch[branch]; !seen {
			branchOrder = append(branchOrder, branch)
		}
		st.JobsByBranch[branch]++
		st.JobsByPriority[string(job.Priority)]++
		st.JobsByStatus[string(job.Status)]++
		if job.Priority == constants.PriorityRepeticion {
			repetitions++
		}

		month := job.CreatedAt.In(loc).Format("2006-01")
		mp, ok := months[month]
		if !ok {
			mp = &MonthlyProgress{Month: month, ByBranch: make(map[string]int)}
			months[month] = mp
		}
		mp.Total++
		mp.ByBranch[branch]++

		entries, ok := history[job.ID]
		if !ok {
			entries = job.History
		}
		entries = SortAsc(entries)

		if hours, ok := cycleTime(entries); ok {
			cycleSum += hours
			st.CycleTimeJobs++
			branchCycle[branch] += hours
			branchSamples[branch]++
		}

		for status, hours := range timeInStatus(entries) {
			statusHours[status] += hours
			statusJobs[status]++
		}
	}

	best := 0
	for _, b := range branchOrder {
		if st.JobsByBranch[b] > best {
			best = st.JobsByBranch[b]
			st.MostActiveBranch = b
		}
	}

	st.RepetitionRate = float64(repetitions) / float64(len(jobs)) * 100

	if st.CycleTimeJobs > 0 {
		st.AverageCycleTime = cycleSum / float64(st.CycleTimeJobs)
	}
	for b, sum := range branchCycle {
		st.CycleTimeByBranch[b] = sum / float64(branchSamples[b])
	}
	for s, sum := range statusHours {
		st.AverageTimeInStatus[string(s)] = sum / float64(statusJobs[s])
	}

	for _, mp := range months {
		st.MonthlyProgress = append(st.MonthlyProgress, *mp)
	}
	slices.SortFunc(st.MonthlyProgress, func(a, b MonthlyProgress) int {
		switch {
		case a.Month < b.Month:
			return -1
		case a.Month > b.Month:
			return 1
		}
		return 0
	})
	return st
}

// cycleTime - от первого SentToLab до первого Completed, если он позже.
// entries должны быть отсортированы по возрастанию.
func cycleTime(entries []entities.HistoryEntry) (float64, bool) {
	var sent, completed *time.Time
	for i := range entries {
		s, ok := entries[i].JobStatus()
		if !ok {
			continue
		}
		switch {
		case s == constants.JobStatusSentToLab && sent == nil:
			sent = &entries[i].CreatedAt
		case s == constants.JobStatusCompleted && completed == nil:
			completed = &entries[i].CreatedAt
		}
	}
	if sent == nil || completed == nil || !completed.After(*sent) {
		return 0, false
	}
	return hoursBetween(*sent, *completed), true
}

// timeInStatus суммирует по одной работе длительность интервалов между соседними
// записями, если интервал начинается со смены статуса.
func timeInStatus(entries []entities.HistoryEntry) map[constants.JobStatus]float64 {
	out := make(map[constants.JobStatus]float64)
	for i := 0; i+1 < len(entries); i++ {
		status, ok := entries[i].JobStatus()
		if !ok {
			continue
		}
		out[status] += hoursBetween(entries[i].CreatedAt, entries[i+1].CreatedAt)
	}
	return out
}

// PercentChange - изменение относительно прошлого периода в процентах.
func PercentChange(current, previous float64) float64 {
	if previous > 0 {
		return (current - previous) / previous * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

func CompareStats(current, previous Stats) StatsDeltas {
	return StatsDeltas{
		TotalJobs:        PercentChange(float64(current.TotalJobs), float64(previous.TotalJobs)),
		RepetitionRate:   PercentChange(current.RepetitionRate, previous.RepetitionRate),
		AverageCycleTime: PercentChange(current.AverageCycleTime, previous.AverageCycleTime),
	}
}

// PreviousWindow - период той же длины, заканчивающийся перед from.
// from и to - границы включительно с точностью до миллисекунды.
func PreviousWindow(from, to time.Time) (time.Time, time.Time, error) {
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.NewInvalidInputError("Дата начала позже даты окончания")
	}
	length := to.Sub(from) + time.Millisecond
	prevTo := from.Add(-time.Millisecond)
	prevFrom := from.Add(-length)
	return prevFrom, prevTo, nil
}
