package repositories

import (
	sq "github.com/Masterminds/squirrel"

	db "optilab/internal/infrastructure/bd"
	"optilab/internal/workflow"
)

var jobColumns = []string{
	"j.id", "j.description", "j.branch_id", "j.branch_name", "j.status", "j.priority",
	"j.priority_message", "j.job_type", "j.created_at", "j.updated_at",
}

// Ранг приоритета должен совпадать с constants.Priority.Rank.
const jobPriorityRank = `CASE j.priority WHEN 'Repeticion' THEN 2 WHEN 'Urgente' THEN 1 ELSE 0 END`

// COLLATE "C" дает побайтовый порядок: 'C-10' < 'C-2' < 'C-9' при любой локали БД.
var jobOrderBy = map[workflow.SortOrder][]string{
	workflow.SortUpdatedDesc:  {"j.updated_at DESC", `j.id COLLATE "C" ASC`},
	workflow.SortPriorityDesc: {jobPriorityRank + " DESC", "j.updated_at DESC", `j.id COLLATE "C" ASC`},
	workflow.SortIDAsc:        {`j.id COLLATE "C" ASC`},
	workflow.SortIDDesc:       {`j.id COLLATE "C" DESC`},
}

func jobPredicates(c workflow.JobCriteria) []sq.Sqlizer {
	var preds []sq.Sqlizer
	if c.BranchID != "" {
		preds = append(preds, sq.Eq{"j.branch_id": c.BranchID})
	}
	if len(c.Statuses) > 0 {
		preds = append(preds, sq.Eq{"j.status": c.Statuses})
	}
	if len(c.Priorities) > 0 {
		preds = append(preds, sq.Eq{"j.priority": c.Priorities})
	}
	if len(c.JobTypes) > 0 {
		preds = append(preds, sq.Eq{"j.job_type": c.JobTypes})
	}
	if c.CreatedFrom != nil {
		preds = append(preds, sq.GtOrEq{"j.created_at": *c.CreatedFrom})
	}
	if c.CreatedTo != nil {
		preds = append(preds, sq.LtOrEq{"j.created_at": *c.CreatedTo})
	}
	if s := db.SearchAny(c.Search, "j.id", "j.description", "j.branch_name"); s != nil {
		preds = append(preds, s)
	}
	return preds
}

// buildJobListQuery возвращает запрос страницы и запрос общего количества с теми же условиями.
func buildJobListQuery(c workflow.JobCriteria) (sq.SelectBuilder, sq.SelectBuilder) {
	preds := jobPredicates(c)

	count := db.ApplyFilters(psql.Select("COUNT(*)").From("jobs AS j"), preds...)

	order, ok := jobOrderBy[c.Sort]
	if !ok {
		order = jobOrderBy[workflow.SortUpdatedDesc]
	}
	list := db.ApplyFilters(psql.Select(jobColumns...).From("jobs AS j"), preds...).OrderBy(order...)
	list = db.ApplyPage(list, c.Limit, c.Offset)

	return list, count
}
