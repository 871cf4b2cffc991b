package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "optilab/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// storeError оборачивает ошибку БД в ErrStoreUnavailable, сохраняя исходную цепочку.
// Ошибки, уже приведенные к таксономии, проходят как есть.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrForbidden) ||
		errors.Is(err, apperrors.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
}

// classifyError переводит ошибки pgx в таксономию ядра.
func classifyError(err error, entity string, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, apperrors.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s %s уже существует (%s): %w", entity, id, pgErr.ConstraintName, apperrors.ErrConflict)
		case pgForeignKeyViolation:
			return apperrors.NewInvalidInputError("%s %s ссылается на несуществующую запись", entity, id)
		case pgCheckViolation:
			return apperrors.NewInvalidInputError("%s %s: нарушено ограничение %s", entity, id, pgErr.ConstraintName)
		}
	}
	return storeError(fmt.Errorf("%s %s: %w", entity, id, err))
}
