package repositories

import (
	sq "github.com/Masterminds/squirrel"

	db "optilab/internal/infrastructure/bd"
	"optilab/internal/workflow"
)

var sparePartColumns = []string{
	"s.id", "s.branch_id", "s.branch_name", "s.supplier", "s.description", "s.requested_by",
	"s.order_reference", "s.notes", "s.status", "s.priority", "s.order_type", "s.job_id",
	"s.created_at", "s.updated_at",
}

const sparePartPriorityRank = `CASE s.priority WHEN 'Urgente' THEN 1 ELSE 0 END`

var sparePartOrderBy = map[workflow.SortOrder][]string{
	workflow.SortUpdatedDesc:  {"s.updated_at DESC", `s.id COLLATE "C" ASC`},
	workflow.SortPriorityDesc: {sparePartPriorityRank + " DESC", "s.updated_at DESC", `s.id COLLATE "C" ASC`},
	workflow.SortIDAsc:        {`s.id COLLATE "C" ASC`},
	workflow.SortIDDesc:       {`s.id COLLATE "C" DESC`},
}

func sparePartPredicates(c workflow.SparePartCriteria) []sq.Sqlizer {
	var preds []sq.Sqlizer
	if c.BranchID != "" {
		preds = append(preds, sq.Eq{"s.branch_id": c.BranchID})
	}
	if len(c.Statuses) > 0 {
		preds = append(preds, sq.Eq{"s.status": c.Statuses})
	}
	if len(c.Priorities) > 0 {
		preds = append(preds, sq.Eq{"s.priority": c.Priorities})
	}
	if len(c.OrderTypes) > 0 {
		preds = append(preds, sq.Eq{"s.order_type": c.OrderTypes})
	}
	if c.JobID != "" {
		preds = append(preds, sq.Eq{"s.job_id": c.JobID})
	}
	if c.CreatedFrom != nil {
		preds = append(preds, sq.GtOrEq{"s.created_at": *c.CreatedFrom})
	}
	if c.CreatedTo != nil {
		preds = append(preds, sq.LtOrEq{"s.created_at": *c.CreatedTo})
	}
	if s := db.SearchAny(c.Search, "s.id", "s.description", "s.supplier", "s.branch_name"); s != nil {
		preds = append(preds, s)
	}
	return preds
}

func buildSparePartListQuery(c workflow.SparePartCriteria) (sq.SelectBuilder, sq.SelectBuilder) {
	preds := sparePartPredicates(c)

	count := db.ApplyFilters(psql.Select("COUNT(*)").From("spare_part_orders AS s"), preds...)

	order, ok := sparePartOrderBy[c.Sort]
	if !ok {
		order = sparePartOrderBy[workflow.SortUpdatedDesc]
	}
	list := db.ApplyFilters(psql.Select(sparePartColumns...).From("spare_part_orders AS s"), preds...).OrderBy(order...)
	list = db.ApplyPage(list, c.Limit, c.Offset)

	return list, count
}
