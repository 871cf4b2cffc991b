package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"optilab/internal/entities"
	"optilab/internal/events"
	"optilab/internal/repositories"
	"optilab/internal/workflow"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

type JobServiceInterface interface {
	CreateJob(ctx context.Context, in workflow.NewJobInput) (*entities.Job, error)
	GetJob(ctx context.Context, id string) (*entities.Job, error)
	ListJobs(ctx context.Context, q workflow.JobQuery) ([]entities.Job, types.Pagination, error)
	UpdateJob(ctx context.Context, id string, change workflow.JobChange) (*entities.Job, error)
	BulkTransition(ctx context.Context, ids []string, target constants.JobStatus) (int, error)
	DeleteJob(ctx context.Context, id string) error
	GetHistory(ctx context.Context, id string) ([]entities.HistoryEntry, error)
}

type JobService struct {
	*BaseService
	repo      repositories.JobRepositoryInterface
	spareRepo repositories.SparePartRepositoryInterface
	calendar  *workflow.Calendar
	logger    *zap.Logger
}

func NewJobService(
	base *BaseService,
	repo repositories.JobRepositoryInterface,
	spareRepo repositories.SparePartRepositoryInterface,
	calendar *workflow.Calendar,
	logger *zap.Logger,
) JobServiceInterface {
	return &JobService{BaseService: base, repo: repo, spareRepo: spareRepo, calendar: calendar, logger: logger}
}

func (s *JobService) CreateJob(ctx context.Context, in workflow.NewJobInput) (*entities.Job, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}

	job, err := workflow.NewJob(in, actor, s.calendar.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Работа создана", zap.String("job_id", job.ID), zap.String("branch_id", job.BranchID), zap.String("actor", actor.ID))
	s.Publish(ctx, events.JobChangedEvent{
		Action: events.ActionCreated,
		JobIDs: []string{job.ID},
		Events: []constants.EventType{constants.EventStatusChange},
		Actor:  actor,
	})
	job.History = workflow.SortDesc(job.History)
	return job, nil
}

// GetJob возвращает работу с журналом (новые сверху) и активным заказом запчасти.
func (s *JobService) GetJob(ctx context.Context, id string) (*entities.Job, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}

	job, err := s.repo.FindJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckBranchScope(actor, job.BranchID, job.ID); err != nil {
		return nil, err
	}

	if job.JobType == constants.JobTypeReparacion {
		linked, err := s.spareRepo.FindActiveByJobID(ctx, job.ID)
		if err != nil {
			return nil, err
		}
		job.LinkedSparePart = linked
	}
	job.History = workflow.SortDesc(job.History)
	return job, nil
}

func (s *JobService) ListJobs(ctx context.Context, q workflow.JobQuery) ([]entities.Job, types.Pagination, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, types.Pagination{}, err
	}

	criteria, err := q.Resolve(actor, s.calendar.Location())
	if err != nil {
		return nil, types.Pagination{}, err
	}

	jobs, total, err := s.repo.ListJobs(ctx, criteria)
	if err != nil {
		return nil, types.Pagination{}, err
	}
	if jobs == nil {
		jobs = []entities.Job{}
	}
	return jobs, criteria.Pagination(total), nil
}

func changedEvents(entries []entities.HistoryEntry) []constants.EventType {
	out := make([]constants.EventType, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.EventType)
	}
	return out
}

// UpdateJob применяет изменение атомарно. Повтор текущих значений ничего не пишет.
func (s *JobService) UpdateJob(ctx context.Context, id string, change workflow.JobChange) (*entities.Job, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	if change.IsEmpty() {
		return nil, apperrors.NewInvalidInputError("Нет изменений")
	}

	var written []entities.HistoryEntry
	job, err := s.repo.UpdateJob(ctx, id, func(job *entities.Job) ([]entities.HistoryEntry, error) {
		entries, err := workflow.ApplyJobChange(job, change, actor, s.calendar.Now())
		written = entries
		return entries, err
	})
	if err != nil {
		s.logger.Warn("Изменение работы отклонено", zap.String("job_id", id), zap.String("actor", actor.ID), zap.Error(err))
		return nil, err
	}

	if len(written) > 0 {
		s.logger.Info("Работа изменена",
			zap.String("job_id", id),
			zap.String("status", string(job.Status)),
			zap.Int("entries", len(written)),
		)
		s.Publish(ctx, events.JobChangedEvent{
			Action: events.ActionUpdated,
			JobIDs: []string{id},
			Events: changedEvents(written),
			Actor:  actor,
		})
	}
	job.History = workflow.SortDesc(job.History)
	return job, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// BulkTransition двигает работы на один шаг в target. Неподходящие и неизвестные
// пропускаются, ошибка хранилища откатывает всю пачку.
func (s *JobService) BulkTransition(ctx context.Context, ids []string, target constants.JobStatus) (int, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return 0, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, apperrors.NewInvalidInputError("Не выбрано ни одной работы")
	}
	if !target.Valid() {
		return 0, apperrors.NewInvalidInputError("Неизвестный статус работы: %s", target)
	}

	now := s.calendar.Now()
	updated, err := s.repo.UpdateJobs(ctx, ids, func(job *entities.Job) ([]entities.HistoryEntry, error) {
		return workflow.ApplyBulkStatus(job, target, actor, now)
	})
	if err != nil {
		s.logger.Error("Массовая смена статуса не выполнена", zap.Int("count", len(ids)), zap.Error(err))
		return 0, fmt.Errorf("массовый переход в %s: %w", target, err)
	}

	s.logger.Info("Массовая смена статуса",
		zap.String("target", string(target)),
		zap.Int("requested", len(ids)),
		zap.Int("updated", len(updated)),
		zap.String("actor", actor.ID),
	)
	if len(updated) > 0 {
		changed := make([]string, 0, len(updated))
		for _, job := range updated {
			changed = append(changed, job.ID)
		}
		s.Publish(ctx, events.JobChangedEvent{
			Action: events.ActionUpdated,
			JobIDs: changed,
			Events: []constants.EventType{constants.EventStatusChange},
			Actor:  actor,
		})
	}
	return len(updated), nil
}

func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	actor, err := s.Actor(ctx)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("удаление работы %s: %w", id, apperrors.ErrForbidden)
	}

	unlinked, err := s.repo.DeleteJob(ctx, id, actor, s.calendar.Now())
	if err != nil {
		return err
	}

	s.logger.Info("Работа удалена", zap.String("job_id", id), zap.Strings("unlinked_spare_parts", unlinked))
	s.Publish(ctx, events.JobChangedEvent{Action: events.ActionDeleted, JobIDs: []string{id}, Actor: actor})
	for _, orderID := range unlinked {
		s.Publish(ctx, events.SparePartChangedEvent{Action: events.ActionUpdated, SparePartID: orderID, JobID: id, Actor: actor})
	}
	return nil
}

func (s *JobService) GetHistory(ctx context.Context, id string) ([]entities.HistoryEntry, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.History == nil {
		return []entities.HistoryEntry{}, nil
	}
	return job.History, nil
}

// loadJobHistory догружает журналы. Нужен аналитике и поиску просрочек.
func loadJobHistory(ctx context.Context, repo repositories.JobRepositoryInterface, jobs []entities.Job) (map[string][]entities.HistoryEntry, error) {
	if len(jobs) == 0 {
		return map[string][]entities.HistoryEntry{}, nil
	}
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	history, err := repo.LoadHistory(ctx, ids)
	if err != nil {
		return nil, err
	}
	return history, nil
}
