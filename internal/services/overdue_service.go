package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"optilab/internal/repositories"
	"optilab/internal/workflow"
	"optilab/pkg/constants"
)

type OverdueServiceInterface interface {
	// ListOverdue - просроченные работы в области видимости актора.
	ListOverdue(ctx context.Context) ([]workflow.OverdueJob, error)
	// Scan - проверка по всем филиалам, без актора. Используется планировщиком.
	Scan(ctx context.Context) ([]workflow.OverdueJob, error)
}

type OverdueService struct {
	*BaseService
	repo      repositories.JobRepositoryInterface
	calendar  *workflow.Calendar
	threshold int
	logger    *zap.Logger
}

func NewOverdueService(
	base *BaseService,
	repo repositories.JobRepositoryInterface,
	calendar *workflow.Calendar,
	threshold int,
	logger *zap.Logger,
) OverdueServiceInterface {
	return &OverdueService{BaseService: base, repo: repo, calendar: calendar, threshold: threshold, logger: logger}
}

func (s *OverdueService) find(ctx context.Context, c workflow.JobCriteria) ([]workflow.OverdueJob, error) {
	jobs, _, err := s.repo.ListJobs(ctx, c)
	if err != nil {
		return nil, err
	}
	history, err := loadJobHistory(ctx, s.repo, jobs)
	if err != nil {
		return nil, err
	}
	return workflow.FindOverdue(jobs, history, s.calendar, s.threshold), nil
}

func overdueQuery() workflow.JobQuery {
	statuses := make([]string, 0, len(workflow.OverdueStatuses))
	for _, st := range workflow.OverdueStatuses {
		statuses = append(statuses, string(st))
	}
	return workflow.JobQuery{Statuses: statuses, Sort: workflow.SortUpdatedDesc, DisablePagination: true}
}

func (s *OverdueService) ListOverdue(ctx context.Context) ([]workflow.OverdueJob, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	criteria, err := overdueQuery().Resolve(actor, s.calendar.Location())
	if err != nil {
		return nil, err
	}
	return s.find(ctx, criteria)
}

func (s *OverdueService) Scan(ctx context.Context) ([]workflow.OverdueJob, error) {
	criteria := workflow.JobCriteria{Statuses: workflow.OverdueStatuses, Sort: workflow.SortUpdatedDesc}
	return s.find(ctx, criteria)
}

// StartOverdueScheduler запускает периодическую проверку просрочек и пишет итог в лог.
// Пустое расписание - планировщик не нужен, возвращается nil.
func StartOverdueScheduler(svc OverdueServiceInterface, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.OverdueScanTimeout)
		defer cancel()

		overdue, err := svc.Scan(ctx)
		if err != nil {
			logger.Error("Проверка просрочек не выполнена", zap.Error(err))
			return
		}
		if len(overdue) == 0 {
			logger.Debug("Просроченных работ нет")
			return
		}
		ids := make([]string, 0, len(overdue))
		for _, o := range overdue {
			ids = append(ids, o.Job.ID)
		}
		logger.Warn("Найдены просроченные работы", zap.Int("count", len(overdue)), zap.Strings("job_ids", ids))
	})
	if err != nil {
		return nil, fmt.Errorf("неверное расписание OVERDUE_SCAN_SCHEDULE %q: %w", schedule, err)
	}
	c.Start()
	logger.Info("Планировщик просрочек запущен", zap.String("schedule", schedule))
	return c, nil
}
