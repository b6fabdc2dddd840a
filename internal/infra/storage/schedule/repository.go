package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	engineschedule "github.com/duvan51/agenda-booking-engine/internal/schedule"
	"github.com/duvan51/agenda-booking-engine/pkg/dbmetrics"
	"github.com/duvan51/agenda-booking-engine/pkg/psqlbuilder"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// Repository read-only репозиторий правил расписания.
// Правилами владеет CRM; движок читает их целиком для резолвера.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRuleSet собирает все правила агенды, действующие на дату:
// общие рабочие часы, расписания услуг и исключения, покрывающие дату.
// Расписания услуг загружаются за всю неделю — резолверу нужно знать,
// есть ли у услуги хоть одно правило, а не только правила этого дня.
func (r *Repository) GetRuleSet(ctx context.Context, agendaID int64, date time.Time) (engineschedule.RuleSet, error) {
	workingHours, err := r.GetWorkingHours(ctx, agendaID)
	if err != nil {
		return engineschedule.RuleSet{}, err
	}

	serviceRules, err := r.GetServiceRules(ctx, agendaID)
	if err != nil {
		return engineschedule.RuleSet{}, err
	}

	exceptions, err := r.GetExceptionsForDate(ctx, agendaID, date)
	if err != nil {
		return engineschedule.RuleSet{}, err
	}

	return engineschedule.RuleSet{
		WorkingHours: workingHours,
		ServiceRules: serviceRules,
		Exceptions:   exceptions,
	}, nil
}

// GetWorkingHours получает общие рабочие часы агенды
func (r *Repository) GetWorkingHours(ctx context.Context, agendaID int64) ([]domain.WorkingHourRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"agenda_id",
		"day_of_week",
		"start_time",
		"end_time",
	).
		From("working_hour_rules").
		Where(squirrel.Eq{"agenda_id": agendaID}).
		OrderBy("day_of_week ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]domain.WorkingHourRule, 0)
	for rows.Next() {
		var rule domain.WorkingHourRule
		if err := rows.Scan(&rule.ID, &rule.AgendaID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime); err != nil {
			return nil, fmt.Errorf("%w: GetWorkingHours - scan rule: %v", ErrScanRow, err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHours - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// GetServiceRules получает расписания услуг агенды за всю неделю
func (r *Repository) GetServiceRules(ctx context.Context, agendaID int64) ([]domain.ServiceScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"agenda_id",
		"service_id",
		"day_of_week",
		"start_time",
		"end_time",
	).
		From("service_schedule_rules").
		Where(squirrel.Eq{"agenda_id": agendaID}).
		OrderBy("service_id ASC, day_of_week ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceRules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceRules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]domain.ServiceScheduleRule, 0)
	for rows.Next() {
		var rule domain.ServiceScheduleRule
		if err := rows.Scan(&rule.ID, &rule.AgendaID, &rule.ServiceID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime); err != nil {
			return nil, fmt.Errorf("%w: GetServiceRules - scan rule: %v", ErrScanRow, err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetServiceRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// GetExceptionsForDate получает исключения агенды, чей диапазон дат покрывает
// указанную дату (включительно с обеих сторон)
func (r *Repository) GetExceptionsForDate(ctx context.Context, agendaID int64, date time.Time) ([]domain.BlockException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

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
		Where(squirrel.Eq{"agenda_id": agendaID}).
		Where(squirrel.LtOrEq{"date_start": day}).
		Where(squirrel.GtOrEq{"date_end": day}).
		OrderBy("kind ASC, id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetExceptionsForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExceptionsForDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]domain.BlockException, 0)
	for rows.Next() {
		var e domain.BlockException
		var startTime, endTime types.TimeString
		if err := rows.Scan(
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
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetExceptionsForDate - scan exception: %v", ErrScanRow, err)
		}
		if !startTime.IsZero() {
			e.StartTime = &startTime
		}
		if !endTime.IsZero() {
			e.EndTime = &endTime
		}
		exceptions = append(exceptions, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetExceptionsForDate - rows error: %v", ErrScanRow, err)
	}

	return exceptions, nil
}
