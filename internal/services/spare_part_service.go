package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"optilab/internal/entities"
	"optilab/internal/events"
	"optilab/internal/repositories"
	"optilab/internal/workflow"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

type SparePartServiceInterface interface {
	CreateSparePart(ctx context.Context, in workflow.NewSparePartInput) (*entities.SparePartOrder, error)
	GetSparePart(ctx context.Context, id string) (*entities.SparePartOrder, error)
	ListSpareParts(ctx context.Context, q workflow.SparePartQuery) ([]entities.SparePartOrder, types.Pagination, error)
	UpdateSparePart(ctx context.Context, id string, change workflow.SparePartChange) (*entities.SparePartOrder, error)
	DeleteSparePart(ctx context.Context, id string) error
}

type SparePartService struct {
	*BaseService
	repo     repositories.SparePartRepositoryInterface
	calendar *workflow.Calendar
	logger   *zap.Logger
}

func NewSparePartService(
	base *BaseService,
	repo repositories.SparePartRepositoryInterface,
	calendar *workflow.Calendar,
	logger *zap.Logger,
) SparePartServiceInterface {
	return &SparePartService{BaseService: base, repo: repo, calendar: calendar, logger: logger}
}

// CreateSparePart: проверка связи с работой выполняется хранилищем в той же транзакции.
func (s *SparePartService) CreateSparePart(ctx context.Context, in workflow.NewSparePartInput) (*entities.SparePartOrder, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}

	order, err := workflow.NewSparePartOrder(in, actor, s.calendar.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSparePart(ctx, order); err != nil {
		s.logger.Warn("Заказ запчасти не создан", zap.String("spare_part_id", order.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Заказ запчасти создан",
		zap.String("spare_part_id", order.ID),
		zap.String("branch_id", order.BranchID),
		zap.String("job_id", order.JobID.String),
	)
	s.Publish(ctx, events.SparePartChangedEvent{
		Action:      events.ActionCreated,
		SparePartID: order.ID,
		JobID:       order.JobID.String,
		Actor:       actor,
	})
	order.History = workflow.SortDesc(order.History)
	return order, nil
}

func (s *SparePartService) GetSparePart(ctx context.Context, id string) (*entities.SparePartOrder, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindSparePart(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckBranchScope(actor, order.BranchID, order.ID); err != nil {
		return nil, err
	}
	order.History = workflow.SortDesc(order.History)
	return order, nil
}

func (s *SparePartService) ListSpareParts(ctx context.Context, q workflow.SparePartQuery) ([]entities.SparePartOrder, types.Pagination, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, types.Pagination{}, err
	}
	criteria, err := q.Resolve(actor, s.calendar.Location())
	if err != nil {
		return nil, types.Pagination{}, err
	}
	orders, total, err := s.repo.ListSpareParts(ctx, criteria)
	if err != nil {
		return nil, types.Pagination{}, err
	}
	if orders == nil {
		orders = []entities.SparePartOrder{}
	}
	return orders, criteria.Pagination(total), nil
}

func (s *SparePartService) UpdateSparePart(ctx context.Context, id string, change workflow.SparePartChange) (*entities.SparePartOrder, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	if change.IsEmpty() {
		return nil, apperrors.NewInvalidInputError("Нет изменений")
	}

	var written int
	order, err := s.repo.UpdateSparePart(ctx, id, func(order *entities.SparePartOrder) ([]entities.HistoryEntry, error) {
		entries, err := workflow.ApplySparePartChange(order, change, actor, s.calendar.Now())
		written = len(entries)
		return entries, err
	})
	if err != nil {
		s.logger.Warn("Изменение заказа отклонено", zap.String("spare_part_id", id), zap.String("actor", actor.ID), zap.Error(err))
		return nil, err
	}

	if written > 0 {
		s.logger.Info("Заказ запчасти изменен", zap.String("spare_part_id", id), zap.String("status", string(order.Status)))
		s.Publish(ctx, events.SparePartChangedEvent{
			Action:      events.ActionUpdated,
			SparePartID: id,
			JobID:       order.JobID.String,
			Actor:       actor,
		})
	}
	order.History = workflow.SortDesc(order.History)
	return order, nil
}

func (s *SparePartService) DeleteSparePart(ctx context.Context, id string) error {
	actor, err := s.Actor(ctx)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("удаление заказа %s: %w", id, apperrors.ErrForbidden)
	}
	if err := s.repo.DeleteSparePart(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Заказ запчасти удален", zap.String("spare_part_id", id))
	s.Publish(ctx, events.SparePartChangedEvent{Action: events.ActionDeleted, SparePartID: id, Actor: actor})
	return nil
}
