package agenda

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/dbmetrics"
	"github.com/duvan51/agenda-booking-engine/pkg/psqlbuilder"
)

// EngineDefaults сервисные значения опций движка из config.toml.
// Подставляются вместо NULL-колонок агенды: отсутствие строки настройки
// у агенды означает "использовать дефолт сервиса".
type EngineDefaults struct {
	CapacityPolicy           domain.CapacityPolicy
	BucketGranularityMinutes int
	DefaultClosedDay         bool
}

// Repository read-only репозиторий агенд. Движок бронирования агенды
// не создает и не удаляет — их жизненным циклом владеет CRM.
type Repository struct {
	db       dbmetrics.DBExecutor
	defaults EngineDefaults
}

// NewRepository создает новый экземпляр репозитория агенд
func NewRepository(db dbmetrics.DBExecutor, defaults EngineDefaults) *Repository {
	return &Repository{db: db, defaults: defaults}
}

// GetByID получает агенду вместе с её настройками движка
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Agenda, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"description",
		"slots_per_hour",
		"capacity_policy",
		"bucket_granularity_minutes",
		"default_closed_day",
		"created_at",
		"updated_at",
	).
		From("agendas").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var agenda domain.Agenda
	var capacityPolicy sql.NullString
	var granularity sql.NullInt64
	var closedDay sql.NullBool
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&agenda.ID,
		&agenda.Name,
		&agenda.Description,
		&agenda.SlotsPerHour,
		&capacityPolicy,
		&granularity,
		&closedDay,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrAgendaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan agenda: %v", ErrScanRow, err)
	}

	agenda.CapacityPolicy = r.defaults.CapacityPolicy
	if capacityPolicy.Valid && capacityPolicy.String != "" {
		agenda.CapacityPolicy = domain.CapacityPolicy(capacityPolicy.String)
	}

	agenda.BucketGranularityMinutes = r.defaults.BucketGranularityMinutes
	if granularity.Valid && granularity.Int64 > 0 {
		agenda.BucketGranularityMinutes = int(granularity.Int64)
	}

	agenda.DefaultClosedDay = r.defaults.DefaultClosedDay
	if closedDay.Valid {
		agenda.DefaultClosedDay = closedDay.Bool
	}

	agenda.CreatedAt = createdAt.Time
	agenda.UpdatedAt = updatedAt.Time

	return &agenda, nil
}
