package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"optilab/internal/dto"
	"optilab/internal/repositories"
	"optilab/internal/workflow"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
)

type StatsServiceInterface interface {
	GetStats(ctx context.Context, q workflow.JobQuery, compare bool) (*dto.StatsDTO, error)
}

type StatsService struct {
	*BaseService
	repo     repositories.JobRepositoryInterface
	calendar *workflow.Calendar
	ttl      time.Duration
	logger   *zap.Logger
}

func NewStatsService(
	base *BaseService,
	repo repositories.JobRepositoryInterface,
	calendar *workflow.Calendar,
	ttl time.Duration,
	logger *zap.Logger,
) StatsServiceInterface {
	return &StatsService{BaseService: base, repo: repo, calendar: calendar, ttl: ttl, logger: logger}
}

func (s *StatsService) computeWindow(ctx context.Context, c workflow.JobCriteria) (workflow.Stats, error) {
	jobs, _, err := s.repo.ListJobs(ctx, c)
	if err != nil {
		return workflow.Stats{}, err
	}
	history, err := loadJobHistory(ctx, s.repo, jobs)
	if err != nil {
		return workflow.Stats{}, err
	}
	return workflow.ComputeStats(jobs, history, s.calendar.Location()), nil
}

type statsCacheKey struct {
	Criteria workflow.JobCriteria `json:"criteria"`
	Compare  bool                 `json:"compare"`
}

func (s *StatsService) cacheKey(ctx context.Context, c workflow.JobCriteria, compare bool) (string, bool) {
	version, ok := s.CacheVersion(ctx, constants.CacheKeyStatsVersion)
	if !ok {
		return "", false
	}
	payload, err := json.Marshal(statsCacheKey{Criteria: c, Compare: compare})
	if err != nil {
		return "", false
	}
	return fmt.Sprintf(constants.CacheKeyStats, version, xxhash.Sum64(payload)), true
}

// GetStats считает аналитику по отфильтрованным работам без пагинации.
// В режиме сравнения второй расчет идет по предыдущему окну той же длины.
func (s *StatsService) GetStats(ctx context.Context, q workflow.JobQuery, compare bool) (*dto.StatsDTO, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	if compare && (q.CreatedFrom == nil || q.CreatedTo == nil) {
		return nil, apperrors.NewInvalidInputError("Для сравнения нужны обе даты периода")
	}

	q.DisablePagination = true
	criteria, err := q.Resolve(actor, s.calendar.Location())
	if err != nil {
		return nil, err
	}

	key, cacheable := s.cacheKey(ctx, criteria, compare)
	if cacheable {
		var cached dto.StatsDTO
		if s.CacheGet(ctx, key, &cached) {
			return &cached, nil
		}
	}

	result := &dto.StatsDTO{}
	if !compare {
		result.Current, err = s.computeWindow(ctx, criteria)
		if err != nil {
			return nil, err
		}
	} else {
		prevFrom, prevTo, err := workflow.PreviousWindow(*criteria.CreatedFrom, *criteria.CreatedTo)
		if err != nil {
			return nil, err
		}
		previousCriteria := criteria
		previousCriteria.CreatedFrom = &prevFrom
		previousCriteria.CreatedTo = &prevTo

		var previous workflow.Stats
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			st, err := s.computeWindow(gctx, criteria)
			result.Current = st
			return err
		})
		g.Go(func() error {
			st, err := s.computeWindow(gctx, previousCriteria)
			previous = st
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		deltas := workflow.CompareStats(result.Current, previous)
		result.Previous = &previous
		result.Deltas = &deltas
		result.PreviousFrom = &prevFrom
		result.PreviousTo = &prevTo
	}

	s.logger.Debug("Статистика рассчитана",
		zap.String("actor", actor.ID),
		zap.Int("total_jobs", result.Current.TotalJobs),
		zap.Bool("compare", compare),
	)
	if cacheable {
		s.CacheSet(ctx, key, result, s.ttl)
	}
	return result, nil
}
