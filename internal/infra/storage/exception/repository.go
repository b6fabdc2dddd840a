package exception

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/dbmetrics"
	"github.com/duvan51/agenda-booking-engine/pkg/psqlbuilder"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// Repository репозиторий исключений расписания (блокировки и открытия)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория исключений
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое исключение
func (r *Repository) Create(ctx context.Context, e *domain.BlockException) (*domain.BlockException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("block_exceptions").
		Columns(
			"agenda_id",
			"date_start",
			"date_end",
			"start_time",
			"end_time",
			"whole_day",
			"service_id",
			"kind",
			"reason",
		).
		Values(
			e.AgendaID,
			e.DateStart,
			e.DateEnd,
			e.StartTime,
			e.EndTime,
			e.WholeDay,
			e.ServiceID,
			e.Kind,
			e.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	e.CreatedAt = createdAt.Time

	return e, nil
}

// GetByID получает исключение по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.BlockException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"agenda_id",
		"date_start",
		"date_end",
		"start_time",
		"end_time",
		"whole_day",
		"service_id",
		"kind",
		"reason",
		"created_at",
	).
		From("block_exceptions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var e domain.BlockException
	var startTime, endTime types.TimeString
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&e.ID,
		&e.AgendaID,
		&e.DateStart,
		&e.DateEnd,
		&startTime,
		&endTime,
		&e.WholeDay,
		&e.ServiceID,
		&e.Kind,
		&e.Reason,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrExceptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan exception: %v", ErrScanRow, err)
	}

	if !startTime.IsZero() {
		e.StartTime = &startTime
	}
	if !endTime.IsZero() {
		e.EndTime = &endTime
	}
	e.CreatedAt = createdAt.Time

	return &e, nil
}

// Delete удаляет исключение
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("block_exceptions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrExceptionNotFound
	}

	return nil
}
