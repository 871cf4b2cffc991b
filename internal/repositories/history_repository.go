package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"optilab/internal/entities"
)

// historyTable описывает журнал одного вида сущностей. Обе таблицы устроены одинаково,
// отличается только имя внешнего ключа.
type historyTable struct {
	name     string
	entityFK string
}

var (
	jobHistoryTable       = historyTable{name: "job_history", entityFK: "job_id"}
	sparePartHistoryTable = historyTable{name: "spare_part_history", entityFK: "order_id"}
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// insertHistory дописывает записи в журнал. Обновления и удаления записей нет.
func insertHistory(ctx context.Context, q Querier, table historyTable, entries []entities.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	builder := psql.Insert(table.name).Columns(
		"id", table.entityFK, "event_type", "old_value", "new_value", "message", "notes",
		"actor_id", "actor_name", "created_at",
	)
	for _, e := range entries {
		builder = builder.Values(
			e.ID, e.EntityID, e.EventType, e.OldValue, e.NewValue, e.Message, e.Notes,
			e.ActorID, e.ActorName, e.CreatedAt,
		)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("сборка запроса %s: %w", table.name, err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return classifyError(err, table.name, entries[0].EntityID)
	}
	return nil
}

// loadHistory читает журналы пачкой сущностей. Порядок вставки не гарантирован,
// потребители сортируют сами.
func loadHistory(ctx context.Context, q Querier, table historyTable, ids []string) (map[string][]entities.HistoryEntry, error) {
	result := make(map[string][]entities.HistoryEntry, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := psql.Select(
		"id", table.entityFK, "event_type", "old_value", "new_value", "message", "notes",
		"actor_id", "actor_name", "created_at",
	).From(table.name).
		Where(sq.Expr(table.entityFK+" = ANY(?)", ids)).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("сборка запроса %s: %w", table.name, err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError(fmt.Errorf("чтение %s: %w", table.name, err))
	}
	defer rows.Close()

	for rows.Next() {
		var e entities.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.EntityID, &e.EventType, &e.OldValue, &e.NewValue, &e.Message, &e.Notes,
			&e.ActorID, &e.ActorName, &e.CreatedAt,
		); err != nil {
			return nil, storeError(fmt.Errorf("сканирование %s: %w", table.name, err))
		}
		result[e.EntityID] = append(result[e.EntityID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return result, nil
}
