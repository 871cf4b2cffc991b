package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"optilab/internal/entities"
	"optilab/internal/workflow"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
)

type SparePartUpdateFunc func(order *entities.SparePartOrder) ([]entities.HistoryEntry, error)

type SparePartRepositoryInterface interface {
	FindSparePart(ctx context.Context, id string) (*entities.SparePartOrder, error)
	ListSpareParts(ctx context.Context, c workflow.SparePartCriteria) ([]entities.SparePartOrder, uint64, error)
	// FindActiveByJobID возвращает nil, nil, если активного заказа нет.
	FindActiveByJobID(ctx context.Context, jobID string) (*entities.SparePartOrder, error)
	CreateSparePart(ctx context.Context, order *entities.SparePartOrder) error
	UpdateSparePart(ctx context.Context, id string, fn SparePartUpdateFunc) (*entities.SparePartOrder, error)
	DeleteSparePart(ctx context.Context, id string) error
}

type SparePartRepository struct {
	storage *pgxpool.Pool
	tx      TxManagerInterface
	logger  *zap.Logger
}

func NewSparePartRepository(storage *pgxpool.Pool, logger *zap.Logger) SparePartRepositoryInterface {
	return &SparePartRepository{storage: storage, tx: NewTxManager(storage), logger: logger}
}

func scanSparePart(row pgx.Row) (*entities.SparePartOrder, error) {
	var o entities.SparePartOrder
	err := row.Scan(
		&o.ID, &o.BranchID, &o.BranchName, &o.Supplier, &o.Description, &o.RequestedBy,
		&o.OrderReference, &o.Notes, &o.Status, &o.Priority, &o.OrderType, &o.JobID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func findSparePart(ctx context.Context, q Querier, where sq.Sqlizer, forUpdate bool) (*entities.SparePartOrder, error) {
	builder := psql.Select(sparePartColumns...).From("spare_part_orders AS s").Where(where)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanSparePart(q.QueryRow(ctx, query, args...))
}

func (r *SparePartRepository) FindSparePart(ctx context.Context, id string) (*entities.SparePartOrder, error) {
	order, err := findSparePart(ctx, r.storage, sq.Eq{"s.id": id}, false)
	if err != nil {
		return nil, classifyError(err, "заказ", id)
	}
	history, err := loadHistory(ctx, r.storage, sparePartHistoryTable, []string{id})
	if err != nil {
		return nil, err
	}
	order.History = history[id]
	return order, nil
}

func activeByJobID(ctx context.Context, q Querier, jobID string, forUpdate bool) (*entities.SparePartOrder, error) {
	where := sq.And{
		sq.Eq{"s.job_id": jobID},
		sq.NotEq{"s.status": constants.TerminalSparePartStatuses},
	}
	order, err := findSparePart(ctx, q, where, forUpdate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyError(err, "заказ по работе", jobID)
	}
	return order, nil
}

func (r *SparePartRepository) FindActiveByJobID(ctx context.Context, jobID string) (*entities.SparePartOrder, error) {
	return activeByJobID(ctx, r.storage, jobID, false)
}

func (r *SparePartRepository) ListSpareParts(ctx context.Context, c workflow.SparePartCriteria) ([]entities.SparePartOrder, uint64, error) {
	listBuilder, countBuilder := buildSparePartListQuery(c)

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, storeError(fmt.Errorf("ошибка подсчета заказов: %w", err))
	}
	if total == 0 {
		return []entities.SparePartOrder{}, 0, nil
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storeError(fmt.Errorf("ошибка получения списка заказов: %w", err))
	}
	defer rows.Close()

	orders := make([]entities.SparePartOrder, 0, c.Limit)
	for rows.Next() {
		order, err := scanSparePart(rows)
		if err != nil {
			return nil, 0, storeError(fmt.Errorf("ошибка сканирования заказа: %w", err))
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeError(err)
	}
	return orders, total, nil
}

// CreateSparePart вставляет заказ. Связанная работа блокируется на время проверки,
// поэтому два параллельных заказа на одну работу не пройдут оба.
func (r *SparePartRepository) CreateSparePart(ctx context.Context, order *entities.SparePartOrder) error {
	return r.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if order.JobID.Valid {
			job, err := findJob(ctx, tx, order.JobID.String, true)
			if errors.Is(err, apperrors.ErrNotFound) {
				job = nil
			} else if err != nil {
				return err
			}
			active, err := activeByJobID(ctx, tx, order.JobID.String, false)
			if err != nil {
				return err
			}
			if err := workflow.ValidateSparePartLink(order, job, active); err != nil {
				return err
			}
		}

		query, args, err := psql.Insert("spare_part_orders").Columns(
			"id", "branch_id", "branch_name", "supplier", "description", "requested_by",
			"order_reference", "notes", "status", "priority", "order_type", "job_id",
			"created_at", "updated_at",
		).Values(
			order.ID, order.BranchID, order.BranchName, order.Supplier, order.Description, order.RequestedBy,
			order.OrderReference, order.Notes, order.Status, order.Priority, order.OrderType, order.JobID,
			order.CreatedAt, order.UpdatedAt,
		).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return classifyError(err, "заказ", order.ID)
		}
		return insertHistory(ctx, tx, sparePartHistoryTable, order.History)
	})
}

func (r *SparePartRepository) UpdateSparePart(ctx context.Context, id string, fn SparePartUpdateFunc) (*entities.SparePartOrder, error) {
	var result *entities.SparePartOrder
	err := r.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := findSparePart(ctx, tx, sq.Eq{"s.id": id}, true)
		if err != nil {
			return classifyError(err, "заказ", id)
		}
		prev := order.UpdatedAt

		entries, err := fn(order)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			if err := saveSparePart(ctx, tx, order, prev); err != nil {
				return err
			}
			if err := insertHistory(ctx, tx, sparePartHistoryTable, entries); err != nil {
				return err
			}
		}

		history, err := loadHistory(ctx, tx, sparePartHistoryTable, []string{id})
		if err != nil {
			return err
		}
		order.History = history[id]
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func saveSparePart(ctx context.Context, tx pgx.Tx, order *entities.SparePartOrder, prev time.Time) error {
	query, args, err := psql.Update("spare_part_orders").SetMap(map[string]interface{}{
		"status":     order.Status,
		"notes":      order.Notes,
		"updated_at": order.UpdatedAt,
	}).Where(sq.Eq{"id": order.ID, "updated_at": prev}).ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return classifyError(err, "заказ", order.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("заказ %s изменен параллельно: %w", order.ID, apperrors.ErrConflict)
	}
	return nil
}

func (r *SparePartRepository) DeleteSparePart(ctx context.Context, id string) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM spare_part_orders WHERE id = $1`, id)
	if err != nil {
		return classifyError(err, "заказ", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("заказ %s: %w", id, apperrors.ErrNotFound)
	}
	r.logger.Debug("Заказ запчасти удален", zap.String("spare_part_id", id))
	return nil
}
