package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/dbmetrics"
	"github.com/duvan51/agenda-booking-engine/pkg/psqlbuilder"
)

// Repository read-only репозиторий каталога услуг.
// Каталогом владеет CRM; движок только читает длительность,
// concurrency и привязку услуги к агенде.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetServiceByID получает услугу из общего каталога
func (r *Repository) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"description",
		"duration_minutes",
		"concurrency",
		"base_price",
		"color",
		"created_at",
		"updated_at",
	).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceByID - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.DurationMinutes,
		&service.Concurrency,
		&service.BasePrice,
		&service.Color,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceByID - scan service: %v", ErrScanRow, err)
	}

	service.CreatedAt = createdAt.Time
	service.UpdatedAt = updatedAt.Time

	return &service, nil
}

// GetOffering проверяет, что услуга подключена к агенде и активна
func (r *Repository) GetOffering(ctx context.Context, agendaID, serviceID int64) (*domain.AgendaServiceOffering, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"agenda_id",
		"service_id",
		"discount_percent",
		"final_price",
		"active",
	).
		From("agenda_services").
		Where(squirrel.Eq{"agenda_id": agendaID, "service_id": serviceID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOffering - build select query: %v", ErrBuildQuery, err)
	}

	var offering domain.AgendaServiceOffering

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&offering.ID,
		&offering.AgendaID,
		&offering.ServiceID,
		&offering.DiscountPercent,
		&offering.FinalPrice,
		&offering.Active,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotOffered
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOffering - scan offering: %v", ErrScanRow, err)
	}

	if !offering.Active {
		return nil, ErrServiceNotOffered
	}

	return &offering, nil
}
