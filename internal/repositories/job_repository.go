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
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

// JobUpdateFunc меняет работу на месте и возвращает новые записи журнала.
// workflow.ErrNotEligible в массовом режиме означает "пропустить".
type JobUpdateFunc func(job *entities.Job) ([]entities.HistoryEntry, error)

type JobRepositoryInterface interface {
	FindJob(ctx context.Context, id string) (*entities.Job, error)
	ListJobs(ctx context.Context, c workflow.JobCriteria) ([]entities.Job, uint64, error)
	LoadHistory(ctx context.Context, ids []string) (map[string][]entities.HistoryEntry, error)
	CreateJob(ctx context.Context, job *entities.Job) error
	UpdateJob(ctx context.Context, id string, fn JobUpdateFunc) (*entities.Job, error)
	UpdateJobs(ctx context.Context, ids []string, fn JobUpdateFunc) ([]entities.Job, error)
	DeleteJob(ctx context.Context, id string, actor types.Actor, now time.Time) ([]string, error)
}

type JobRepository struct {
	storage *pgxpool.Pool
	tx      TxManagerInterface
	logger  *zap.Logger
}

func NewJobRepository(storage *pgxpool.Pool, logger *zap.Logger) JobRepositoryInterface {
	return &JobRepository{storage: storage, tx: NewTxManager(storage), logger: logger}
}

func scanJob(row pgx.Row) (*entities.Job, error) {
	var j entities.Job
	err := row.Scan(
		&j.ID, &j.Description, &j.BranchID, &j.BranchName, &j.Status, &j.Priority,
		&j.PriorityMessage, &j.JobType, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func findJob(ctx context.Context, q Querier, id string, forUpdate bool) (*entities.Job, error) {
	builder := psql.Select(jobColumns...).From("jobs AS j").Where(sq.Eq{"j.id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	job, err := scanJob(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, classifyError(err, "работа", id)
	}
	return job, nil
}

func (r *JobRepository) FindJob(ctx context.Context, id string) (*entities.Job, error) {
	job, err := findJob(ctx, r.storage, id, false)
	if err != nil {
		return nil, err
	}
	history, err := loadHistory(ctx, r.storage, jobHistoryTable, []string{id})
	if err != nil {
		return nil, err
	}
	job.History = history[id]
	return job, nil
}

func (r *JobRepository) ListJobs(ctx context.Context, c workflow.JobCriteria) ([]entities.Job, uint64, error) {
	listBuilder, countBuilder := buildJobListQuery(c)

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, storeError(fmt.Errorf("ошибка подсчета работ: %w", err))
	}
	if total == 0 {
		return []entities.Job{}, 0, nil
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storeError(fmt.Errorf("ошибка получения списка работ: %w", err))
	}
	defer rows.Close()

	jobs := make([]entities.Job, 0, c.Limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, storeError(fmt.Errorf("ошибка сканирования работы в списке: %w", err))
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeError(err)
	}
	return jobs, total, nil
}

func (r *JobRepository) LoadHistory(ctx context.Context, ids []string) (map[string][]entities.HistoryEntry, error) {
	return loadHistory(ctx, r.storage, jobHistoryTable, ids)
}

func (r *JobRepository) CreateJob(ctx context.Context, job *entities.Job) error {
	return r.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		query, args, err := psql.Insert("jobs").Columns(
			"id", "description", "branch_id", "branch_name", "status", "priority",
			"priority_message", "job_type", "created_at", "updated_at",
		).Values(
			job.ID, job.Description, job.BranchID, job.BranchName, job.Status, job.Priority,
			job.PriorityMessage, job.JobType, job.CreatedAt, job.UpdatedAt,
		).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return classifyError(err, "работа", job.ID)
		}
		return insertHistory(ctx, tx, jobHistoryTable, job.History)
	})
}

// saveJob пишет изменения только если updated_at в БД все еще prev.
// Ноль затронутых строк - кто-то успел изменить работу раньше.
func saveJob(ctx context.Context, tx pgx.Tx, job *entities.Job, prev time.Time) error {
	query, args, err := psql.Update("jobs").SetMap(map[string]interface{}{
		"description":      job.Description,
		"branch_id":        job.BranchID,
		"branch_name":      job.BranchName,
		"status":           job.Status,
		"priority":         job.Priority,
		"priority_message": job.PriorityMessage,
		"updated_at":       job.UpdatedAt,
	}).Where(sq.Eq{"id": job.ID, "updated_at": prev}).ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return classifyError(err, "работа", job.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("работа %s изменена параллельно: %w", job.ID, apperrors.ErrConflict)
	}
	return nil
}

// applyUpdate: блокировка строки -> fn -> запись сущности и журнала, все в рамках tx.
func applyUpdate(ctx context.Context, tx pgx.Tx, id string, fn JobUpdateFunc) (*entities.Job, bool, error) {
	job, err := findJob(ctx, tx, id, true)
	if err != nil {
		return nil, false, err
	}
	prev := job.UpdatedAt

	entries, err := fn(job)
	if err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		return job, false, nil
	}
	if err := saveJob(ctx, tx, job, prev); err != nil {
		return nil, false, err
	}
	if err := insertHistory(ctx, tx, jobHistoryTable, entries); err != nil {
		return nil, false, err
	}
	return job, true, nil
}

func (r *JobRepository) UpdateJob(ctx context.Context, id string, fn JobUpdateFunc) (*entities.Job, error) {
	var result *entities.Job
	err := r.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		job, _, err := applyUpdate(ctx, tx, id, fn)
		if err != nil {
			return err
		}
		history, err := loadHistory(ctx, tx, jobHistoryTable, []string{id})
		if err != nil {
			return err
		}
		job.History = history[id]
		result = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateJobs применяет fn к каждой работе в одной транзакции. Неизвестные и
// неподходящие работы пропускаются, любая другая ошибка откатывает всю пачку.
func (r *JobRepository) UpdateJobs(ctx context.Context, ids []string, fn JobUpdateFunc) ([]entities.Job, error) {
	var updated []entities.Job
	err := r.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		updated = updated[:0]
		for _, id := range ids {
			job, changed, err := applyUpdate(ctx, tx, id, fn)
			if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, workflow.ErrNotEligible) {
				continue
			}
			if err != nil {
				return err
			}
			if changed {
				updated = append(updated, *job)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteJob удаляет работу вместе с журналом. Заказы запчастей, ссылавшиеся на нее,
// отвязываются и получают запись NOTE. Возвращает ID отвязанных заказов.
func (r *JobRepository) DeleteJob(ctx context.Context, id string, actor types.Actor, now time.Time) ([]string, error) {
	var unlinked []string
	err := r.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := findJob(ctx, tx, id, true); err != nil {
			return err
		}

		query, args, err := psql.Select("id", "updated_at").From("spare_part_orders").
			Where(sq.Eq{"job_id": id}).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return err
		}
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return storeError(err)
		}
		type linked struct {
			id        string
			updatedAt time.Time
		}
		var orders []linked
		for rows.Next() {
			var l linked
			if err := rows.Scan(&l.id, &l.updatedAt); err != nil {
				rows.Close()
				return storeError(err)
			}
			orders = append(orders, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return storeError(err)
		}

		for _, o := range orders {
			ts := workflow.Stamp(now, o.updatedAt)
			if _, err := tx.Exec(ctx,
				`UPDATE spare_part_orders SET job_id = NULL, updated_at = $2 WHERE id = $1`, o.id, ts); err != nil {
				return classifyError(err, "заказ", o.id)
			}
			note := workflow.UnlinkNote(o.id, id, actor, ts)
			if err := insertHistory(ctx, tx, sparePartHistoryTable, []entities.HistoryEntry{note}); err != nil {
				return err
			}
			unlinked = append(unlinked, o.id)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
			return classifyError(err, "работа", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(unlinked) > 0 {
		r.logger.Debug("Заказы запчастей отвязаны от удаленной работы",
			zap.String("job_id", id), zap.Strings("spare_part_ids", unlinked))
	}
	return unlinked, nil
}
