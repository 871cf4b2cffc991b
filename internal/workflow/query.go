package workflow

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"optilab/internal/entities"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
	"optilab/pkg/utils"
)

type SortOrder string

const (
	SortUpdatedDesc  SortOrder = "updated_desc"
	SortPriorityDesc SortOrder = "priority_desc"
	SortIDAsc        SortOrder = "id_asc"
	SortIDDesc       SortOrder = "id_desc"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortUpdatedDesc, SortPriorityDesc, SortIDAsc, SortIDDesc:
		return true
	}
	return false
}

// JobQuery - параметры списка так, как их прислал клиент. Состояния между вызовами нет.
type JobQuery struct {
	BranchID          string
	Statuses          []string
	Priorities        []constants.Priority
	JobTypes          []constants.JobType
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	Search            string
	Sort              SortOrder
	Page              int
	PageSize          int
	DisablePagination bool
}

// JobCriteria - проверенный запрос: область видимости применена, псевдо-статусы раскрыты,
// даты переведены в точные границы.
type JobCriteria struct {
	BranchID    string
	Statuses    []constants.JobStatus
	Priorities  []constants.Priority
	JobTypes    []constants.JobType
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Search      string
	Sort        SortOrder
	Page        int
	Limit       int
	Offset      int
}

func (c JobCriteria) Paginated() bool { return c.Limit > 0 }

func (c JobCriteria) Pagination(total uint64) types.Pagination {
	if !c.Paginated() {
		return types.NewPagination(total, 1, int(total))
	}
	return types.NewPagination(total, c.Page, c.Limit)
}

// scopeBranch: филиал видит только свои записи, чужой branch_id - Forbidden.
func scopeBranch(actor types.Actor, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if !actor.IsBranch() {
		return requested, nil
	}
	if requested != "" && requested != actor.ID {
		return "", fmt.Errorf("филиал %s запросил данные филиала %s: %w", actor.ID, requested, apperrors.ErrForbidden)
	}
	return actor.ID, nil
}

// dateRange переводит календарные даты в [00:00:00.000, 23:59:59.999] зоны loc.
func dateRange(from, to *time.Time, loc *time.Location) (*time.Time, *time.Time, error) {
	var f, t *time.Time
	if from != nil {
		v := utils.StartOfDay(from.In(loc))
		f = &v
	}
	if to != nil {
		v := utils.EndOfDay(to.In(loc))
		t = &v
	}
	if f != nil && t != nil && f.After(*t) {
		return nil, nil, apperrors.NewInvalidInputError("Дата начала позже даты окончания")
	}
	return f, t, nil
}

func pageBounds(page, size int, disabled bool) (int, int, int) {
	if disabled {
		return 1, 0, 0
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = constants.DefaultPageSize
	}
	if size > constants.MaxPageSize {
		size = constants.MaxPageSize
	}
	return page, size, (page - 1) * size
}

// ResolveJobStatuses раскрывает ACTIVE и HISTORY в набор канонических статусов.
// Пустой результат означает "любой статус".
func ResolveJobStatuses(values []string) ([]constants.JobStatus, error) {
	var out []constants.JobStatus
	add := func(s constants.JobStatus) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	for _, v := range values {
		switch strings.ToUpper(v) {
		case constants.StatusFilterActive:
			for _, s := range constants.AllJobStatuses {
				if !s.IsTerminal() {
					add(s)
				}
			}
			continue
		case constants.StatusFilterHistory:
			for _, s := range constants.TerminalJobStatuses {
				add(s)
			}
			continue
		}
		s := constants.JobStatus(v)
		if !s.Valid() {
			return nil, apperrors.NewInvalidInputError("Неизвестный статус работы: %s", v)
		}
		add(s)
	}
	return out, nil
}

func (q JobQuery) Resolve(actor types.Actor, loc *time.Location) (JobCriteria, error) {
	if loc == nil {
		loc = time.UTC
	}
	branchID, err := scopeBranch(actor, q.BranchID)
	if err != nil {
		return JobCriteria{}, err
	}
	statuses, err := ResolveJobStatuses(q.Statuses)
	if err != nil {
		return JobCriteria{}, err
	}
	for _, p := range q.Priorities {
		if !p.Valid() {
			return JobCriteria{}, apperrors.NewInvalidInputError("Неизвестный приоритет: %s", p)
		}
	}
	for _, t := range q.JobTypes {
		if !t.Valid() {
			return JobCriteria{}, apperrors.NewInvalidInputError("Неизвестный тип работы: %s", t)
		}
	}
	from, to, err := dateRange(q.CreatedFrom, q.CreatedTo, loc)
	if err != nil {
		return JobCriteria{}, err
	}

	sort := q.Sort
	if sort == "" {
		sort = SortUpdatedDesc
	}
	if !sort.Valid() {
		return JobCriteria{}, apperrors.NewInvalidInputError("Неизвестная сортировка: %s", sort)
	}

	page, limit, offset := pageBounds(q.Page, q.PageSize, q.DisablePagination)
	return JobCriteria{
		BranchID:    branchID,
		Statuses:    statuses,
		Priorities:  q.Priorities,
		JobTypes:    q.JobTypes,
		CreatedFrom: from,
		CreatedTo:   to,
		Search:      strings.TrimSpace(q.Search),
		Sort:        sort,
		Page:        page,
		Limit:       limit,
		Offset:      offset,
	}, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func inRange(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}

func MatchJob(job entities.Job, c JobCriteria) bool {
	if c.BranchID != "" && job.BranchID != c.BranchID {
		return false
	}
	if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, job.Status) {
		return false
	}
	if len(c.Priorities) > 0 && !slices.Contains(c.Priorities, job.Priority) {
		return false
	}
	if len(c.JobTypes) > 0 && !slices.Contains(c.JobTypes, job.JobType) {
		return false
	}
	if !inRange(job.CreatedAt, c.CreatedFrom, c.CreatedTo) {
		return false
	}
	if c.Search != "" && !containsFold(job.ID, c.Search) &&
		!containsFold(job.Description, c.Search) && !containsFold(job.BranchName, c.Search) {
		return false
	}
	return true
}

// compareIDs - побайтовое сравнение строк: "C-10" < "C-2" < "C-9".
func compareIDs(a, b string) int {
	return strings.Compare(a, b)
}

func compareUpdatedDesc(a, b time.Time, idA, idB string) int {
	if c := b.Compare(a); c != 0 {
		return c
	}
	return compareIDs(idA, idB)
}

func SortJobs(jobs []entities.Job, order SortOrder) {
	slices.SortStableFunc(jobs, func(a, b entities.Job) int {
		switch order {
		case SortIDAsc:
			return compareIDs(a.ID, b.ID)
		case SortIDDesc:
			return compareIDs(b.ID, a.ID)
		case SortPriorityDesc:
			if c := b.Priority.Rank() - a.Priority.Rank(); c != 0 {
				return c
			}
		}
		return compareUpdatedDesc(a.UpdatedAt, b.UpdatedAt, a.ID, b.ID)
	})
}

// Paginate режет уже отсортированный срез. limit <= 0 - без пагинации.
func Paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// FilterJobs - фильтр, сортировка и страница в памяти. Возвращает страницу и полный счетчик.
func FilterJobs(jobs []entities.Job, c JobCriteria) ([]entities.Job, uint64) {
	matched := make([]entities.Job, 0, len(jobs))
	for _, j := range jobs {
		if MatchJob(j, c) {
			matched = append(matched, j)
		}
	}
	SortJobs(matched, c.Sort)
	return Paginate(matched, c.Limit, c.Offset), uint64(len(matched))
}

type SparePartQuery struct {
	BranchID          string
	Statuses          []string
	Priorities        []constants.SparePartPriority
	OrderTypes        []constants.SparePartOrderType
	JobID             string
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	Search            string
	Sort              SortOrder
	Page              int
	PageSize          int
	DisablePagination bool
}

type SparePartCriteria struct {
	BranchID    string
	Statuses    []constants.SparePartStatus
	Priorities  []constants.SparePartPriority
	OrderTypes  []constants.SparePartOrderType
	JobID       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Search      string
	Sort        SortOrder
	Page        int
	Limit       int
	Offset      int
}

func (c SparePartCriteria) Pagination(total uint64) types.Pagination {
	if c.Limit <= 0 {
		return types.NewPagination(total, 1, int(total))
	}
	return types.NewPagination(total, c.Page, c.Limit)
}

func ResolveSparePartStatuses(values []string) ([]constants.SparePartStatus, error) {
	var out []constants.SparePartStatus
	add := func(s constants.SparePartStatus) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	for _, v := range values {
		switch strings.ToUpper(v) {
		case constants.StatusFilterActive:
			for _, s := range constants.AllSparePartStatuses {
				if !s.IsTerminal() {
					add(s)
				}
			}
			continue
		case constants.StatusFilterHistory:
			for _, s := range constants.TerminalSparePartStatuses {
				add(s)
			}
			continue
		}
		s := constants.SparePartStatus(v)
		if !s.Valid() {
			return nil, apperrors.NewInvalidInputError("Неизвестный статус заказа: %s", v)
		}
		add(s)
	}
	return out, nil
}

func (q SparePartQuery) Resolve(actor types.Actor, loc *time.Location) (SparePartCriteria, error) {
	if loc == nil {
		loc = time.UTC
	}
	branchID, err := scopeBranch(actor, q.BranchID)
	if err != nil {
		return SparePartCriteria{}, err
	}
	statuses, err := ResolveSparePartStatuses(q.Statuses)
	if err != nil {
		return SparePartCriteria{}, err
	}
	for _, p := range q.Priorities {
		if !p.Valid() {
			return SparePartCriteria{}, apperrors.NewInvalidInputError("Неизвестный приоритет заказа: %s", p)
		}
	}
	for _, t := range q.OrderTypes {
		if !t.Valid() {
			return SparePartCriteria{}, apperrors.NewInvalidInputError("Неизвестный тип заказа: %s", t)
		}
	}
	from, to, err := dateRange(q.CreatedFrom, q.CreatedTo, loc)
	if err != nil {
		return SparePartCriteria{}, err
	}
	sort := q.Sort
	if sort == "" {
		sort = SortUpdatedDesc
	}
	if !sort.Valid() {
		return SparePartCriteria{}, apperrors.NewInvalidInputError("Неизвестная сортировка: %s", sort)
	}

	page, limit, offset := pageBounds(q.Page, q.PageSize, q.DisablePagination)
	return SparePartCriteria{
		BranchID:    branchID,
		Statuses:    statuses,
		Priorities:  q.Priorities,
		OrderTypes:  q.OrderTypes,
		JobID:       strings.TrimSpace(q.JobID),
		CreatedFrom: from,
		CreatedTo:   to,
		Search:      strings.TrimSpace(q.Search),
		Sort:        sort,
		Page:        page,
		Limit:       limit,
		Offset:      offset,
	}, nil
}

func MatchSparePart(o entities.SparePartOrder, c SparePartCriteria) bool {
	if c.BranchID != "" && o.BranchID != c.BranchID {
		return false
	}
	if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, o.Status) {
		return false
	}
	if len(c.Priorities) > 0 && !slices.Contains(c.Priorities, o.Priority) {
		return false
	}
	if len(c.OrderTypes) > 0 && !slices.Contains(c.OrderTypes, o.OrderType) {
		return false
	}
	if c.JobID != "" && (!o.JobID.Valid || o.JobID.String != c.JobID) {
		return false
	}
	if !inRange(o.CreatedAt, c.CreatedFrom, c.CreatedTo) {
		return false
	}
	if c.Search != "" && !containsFold(o.ID, c.Search) && !containsFold(o.Description, c.Search) &&
		!containsFold(o.Supplier, c.Search) && !containsFold(o.BranchName, c.Search) {
		return false
	}
	return true
}

func sparePriorityRank(p constants.SparePartPriority) int {
	if p == constants.SparePartPriorityUrgente {
		return 1
	}
	return 0
}

func SortSpareParts(orders []entities.SparePartOrder, order SortOrder) {
	slices.SortStableFunc(orders, func(a, b entities.SparePartOrder) int {
		switch order {
		case SortIDAsc:
			return compareIDs(a.ID, b.ID)
		case SortIDDesc:
			return compareIDs(b.ID, a.ID)
		case SortPriorityDesc:
			if c := sparePriorityRank(b.Priority) - sparePriorityRank(a.Priority); c != 0 {
				return c
			}
		}
		return compareUpdatedDesc(a.UpdatedAt, b.UpdatedAt, a.ID, b.ID)
	})
}

func FilterSpareParts(orders []entities.SparePartOrder, c SparePartCriteria) ([]entities.SparePartOrder, uint64) {
	matched := make([]entities.SparePartOrder, 0, len(orders))
	for _, o := range orders {
		if MatchSparePart(o, c) {
			matched = append(matched, o)
		}
	}
	SortSpareParts(matched, c.Sort)
	return Paginate(matched, c.Limit, c.Offset), uint64(len(matched))
}
