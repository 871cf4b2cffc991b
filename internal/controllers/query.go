package controllers

import (
	"time"

	"github.com/labstack/echo/v4"

	"optilab/internal/workflow"
	"optilab/pkg/constants"
	"optilab/pkg/utils"
)

// parseJobQuery читает фильтры списка работ из query-параметров.
// Даты - календарные (YYYY-MM-DD) в зоне сервиса.
func parseJobQuery(ctx echo.Context, loc *time.Location) (workflow.JobQuery, error) {
	values := ctx.QueryParams()

	from, err := utils.ParseDate(values, "date_from", loc)
	if err != nil {
		return workflow.JobQuery{}, err
	}
	to, err := utils.ParseDate(values, "date_to", loc)
	if err != nil {
		return workflow.JobQuery{}, err
	}

	page, limit := utils.ParsePage(values)
	q := workflow.JobQuery{
		BranchID:          values.Get("branch_id"),
		Statuses:          utils.ParseList(values, "status"),
		CreatedFrom:       from,
		CreatedTo:         to,
		Search:            values.Get("search"),
		Sort:              workflow.SortOrder(values.Get("sort")),
		Page:              page,
		PageSize:          limit,
		DisablePagination: utils.ParseBool(values, "all"),
	}
	for _, p := range utils.ParseList(values, "priority") {
		q.Priorities = append(q.Priorities, constants.Priority(p))
	}
	for _, t := range utils.ParseList(values, "job_type") {
		q.JobTypes = append(q.JobTypes, constants.JobType(t))
	}
	return q, nil
}

func parseSparePartQuery(ctx echo.Context, loc *time.Location) (workflow.SparePartQuery, error) {
	values := ctx.QueryParams()

	from, err := utils.ParseDate(values, "date_from", loc)
	if err != nil {
		return workflow.SparePartQuery{}, err
	}
	to, err := utils.ParseDate(values, "date_to", loc)
	if err != nil {
		return workflow.SparePartQuery{}, err
	}

	page, limit := utils.ParsePage(values)
	q := workflow.SparePartQuery{
		BranchID:          values.Get("branch_id"),
		Statuses:          utils.ParseList(values, "status"),
		JobID:             values.Get("job_id"),
		CreatedFrom:       from,
		CreatedTo:         to,
		Search:            values.Get("search"),
		Sort:              workflow.SortOrder(values.Get("sort")),
		Page:              page,
		PageSize:          limit,
		DisablePagination: utils.ParseBool(values, "all"),
	}
	for _, p := range utils.ParseList(values, "priority") {
		q.Priorities = append(q.Priorities, constants.SparePartPriority(p))
	}
	for _, t := range utils.ParseList(values, "order_type") {
		q.OrderTypes = append(q.OrderTypes, constants.SparePartOrderType(t))
	}
	return q, nil
}
