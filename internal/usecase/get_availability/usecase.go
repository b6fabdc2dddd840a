package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/duvan51/agenda-booking-engine/internal/capacity"
	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
	catalogRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/catalog"
	"github.com/duvan51/agenda-booking-engine/internal/schedule"
)

// UseCase use case расчёта доступности агенды на дату.
//
// Ответ чисто справочный: к моменту бронирования картина может измениться,
// авторитетная проверка выполняется транзакцией создания записи.
type UseCase struct {
	appointmentRepo AppointmentRepository
	agendaRepo      AgendaRepository
	catalogRepo     CatalogRepository
	scheduleRepo    ScheduleRepository
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointments AppointmentRepository,
	agendas AgendaRepository,
	catalog CatalogRepository,
	schedules ScheduleRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointments,
		agendaRepo:      agendas,
		catalogRepo:     catalog,
		scheduleRepo:    schedules,
		logger:          logger,
	}
}

// Execute выполняет use case расчёта доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: agenda=%d, date=%s", req.AgendaID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Агенда и её настройки движка
	agenda, err := uc.agendaRepo.GetByID(ctx, req.AgendaID)
	if err != nil {
		if errors.Is(err, agendaRepo.ErrAgendaNotFound) {
			uc.logger.Warn("GetAvailability: agenda id=%d not found", req.AgendaID)
			return nil, ErrAgendaNotFound
		}
		return nil, fmt.Errorf("%w: failed to get agenda: %v", ErrInternal, err)
	}

	// 3. Услуга, если запрошена
	var service *domain.Service
	if req.ServiceID != nil {
		if _, err := uc.catalogRepo.GetOffering(ctx, req.AgendaID, *req.ServiceID); err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotOffered) {
				return nil, ErrServiceNotOffered
			}
			return nil, fmt.Errorf("%w: failed to get offering: %v", ErrInternal, err)
		}
		service, err = uc.catalogRepo.GetServiceByID(ctx, *req.ServiceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				return nil, ErrServiceNotFound
			}
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
	}

	// 4. Открытые окна по правилам и исключениям
	ruleSet, err := uc.scheduleRepo.GetRuleSet(ctx, req.AgendaID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get rule set: %v", ErrInternal, err)
	}

	resolver := schedule.Resolver{DefaultClosedDay: agenda.DefaultClosedDay}
	windows, err := resolver.WindowsFor(ruleSet, req.Date, req.ServiceID)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("%w: failed to resolve windows: %v", ErrInternal, err)
	}

	// 5. Занятость активными записями дня
	appointments, err := uc.appointmentRepo.GetByAgendaWithFilter(ctx, domain.AgendaAppointmentsFilter{
		AgendaID: req.AgendaID,
		Date:     &req.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	granularity := agenda.Granularity()
	resp := &Response{
		AgendaID:           req.AgendaID,
		Date:               req.Date,
		GranularityMinutes: granularity,
		Windows:            make([]WindowInfo, 0, len(windows)),
		Buckets:            sweepBuckets(windows, appointments, agenda, service, granularity),
	}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, WindowInfo{StartTime: w.StartTime(), EndTime: w.EndTime()})
	}

	// 6. Решение по конкретному моменту, если запрошен
	if req.Time != nil {
		decision, err := resolver.IsOpen(ruleSet, req.Date, *req.Time, req.ServiceID)
		if err != nil {
			if errors.Is(err, schedule.ErrInvalidInput) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return nil, fmt.Errorf("%w: failed to resolve slot: %v", ErrInternal, err)
		}
		resp.Slot = &SlotDecision{Time: *req.Time, Open: decision.Open, Reason: decision.Reason}
	}

	return resp, nil
}

// sweepBuckets перечисляет интервалы гранулярности, пересекающие открытые
// окна, с остатком мест в каждом
func sweepBuckets(
	windows []schedule.Window,
	appointments []*domain.Appointment,
	agenda *domain.Agenda,
	service *domain.Service,
	granularity int,
) []BucketInfo {
	total := capacity.EffectiveCapacity(agenda, service)
	buckets := make([]BucketInfo, 0, 16)
	seen := make(map[int]bool)

	for _, w := range windows {
		first := w.Start / granularity
		last := (w.End - 1) / granularity
		for idx := first; idx <= last; idx++ {
			if seen[idx] {
				continue
			}
			seen[idx] = true

			committed := capacity.CountCommitted(appointments, idx, granularity)
			available := total - committed
			if available < 0 {
				available = 0
			}

			b := capacity.Bucket{AgendaID: agenda.ID, Index: idx}
			start, end := b.Window(granularity)
			buckets = append(buckets, BucketInfo{
				StartTime: schedule.Window{Start: start, End: end}.StartTime(),
				EndTime:   schedule.Window{Start: start, End: end}.EndTime(),
				Total:     total,
				Available: available,
			})
		}
	}

	return buckets
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AgendaID <= 0 {
		return fmt.Errorf("%w: agendaID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.ServiceID != nil && *req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.Time != nil {
		if err := req.Time.Validate(); err != nil {
			return fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
		}
	}
	return nil
}
