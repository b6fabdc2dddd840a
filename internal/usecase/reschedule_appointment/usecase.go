package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/duvan51/agenda-booking-engine/internal/capacity"
	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
	appointmentRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/appointment"
	catalogRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/catalog"
	"github.com/duvan51/agenda-booking-engine/internal/notifier"
	"github.com/duvan51/agenda-booking-engine/internal/schedule"
	"github.com/duvan51/agenda-booking-engine/pkg/txmanager"
)

// UseCase use case переноса записи на другой слот.
//
// Перенос проходит те же проверки, что и создание, в одной сериализуемой
// транзакции. Старый слот записи освобождается до проверки нового:
// занятость целевых бакетов считается без самой переносимой записи,
// поэтому перенос внутри одного бакета не блокируется собственной бронью.
type UseCase struct {
	appointmentRepo AppointmentRepository
	agendaRepo      AgendaRepository
	catalogRepo     CatalogRepository
	scheduleRepo    ScheduleRepository
	txManager       TransactionManager
	changeNotifier  ChangeNotifier
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointments AppointmentRepository,
	agendas AgendaRepository,
	catalog CatalogRepository,
	schedules ScheduleRepository,
	txManager TransactionManager,
	changeNotifier ChangeNotifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointments,
		agendaRepo:      agendas,
		catalogRepo:     catalog,
		scheduleRepo:    schedules,
		txManager:       txManager,
		changeNotifier:  changeNotifier,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case переноса записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: id=%d, date=%s, time=%s",
		req.AppointmentID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var result *domain.Appointment

	// 2. Перенос целиком внутри сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Исходная запись
		appointment, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("RescheduleAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if !appointment.CanBeRescheduled() {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d has status %s",
				appointment.ID, appointment.Status)
			return ErrNotReschedulable
		}

		// 2.2. Агенда записи
		agenda, err := uc.agendaRepo.GetByID(txCtx, appointment.AgendaID)
		if err != nil {
			if errors.Is(err, agendaRepo.ErrAgendaNotFound) {
				return ErrAgendaNotFound
			}
			return fmt.Errorf("%w: failed to get agenda: %v", ErrInternal, err)
		}

		// 2.3. Целевая услуга: новая или прежняя
		serviceID := appointment.ServiceID
		if req.NewServiceID != nil {
			serviceID = *req.NewServiceID
		}

		if serviceID != appointment.ServiceID {
			if _, err := uc.catalogRepo.GetOffering(txCtx, appointment.AgendaID, serviceID); err != nil {
				if errors.Is(err, catalogRepo.ErrServiceNotOffered) {
					return ErrServiceNotOffered
				}
				return fmt.Errorf("%w: failed to get offering: %v", ErrInternal, err)
			}
		}

		service, err := uc.catalogRepo.GetServiceByID(txCtx, serviceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		// 2.4. Новая дата не в прошлом
		if err := validateDate(req.Date, now); err != nil {
			return err
		}

		// 2.5. Новый слот открыт расписанием
		ruleSet, err := uc.scheduleRepo.GetRuleSet(txCtx, appointment.AgendaID, req.Date)
		if err != nil {
			return fmt.Errorf("%w: failed to get rule set: %v", ErrInternal, err)
		}

		resolver := schedule.Resolver{DefaultClosedDay: agenda.DefaultClosedDay}
		if err := resolver.FitsWindow(ruleSet, req.Date, req.StartTime, service.Duration(), &serviceID); err != nil {
			if errors.Is(err, schedule.ErrInvalidInput) {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			uc.logger.Warn("RescheduleAppointment: schedule rejected slot: %v", err)
			return err
		}

		// 2.6. Записи целевого дня с блокировкой строк
		appointments, err := uc.appointmentRepo.GetByAgendaWithFilter(txCtx, domain.AgendaAppointmentsFilter{
			AgendaID: appointment.AgendaID,
			Date:     &req.Date,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		// 2.7. Вместимость: собственная бронь не учитывается
		granularity := agenda.Granularity()
		buckets, err := capacity.TouchedBuckets(req.StartTime, service.Duration(), granularity)
		if err != nil {
			return fmt.Errorf("%w: failed to compute buckets: %v", ErrInvalidInput, err)
		}

		maxSpots := capacity.EffectiveCapacity(agenda, service)
		for _, idx := range buckets {
			committed := capacity.CountCommittedExcluding(appointments, appointment.ID, idx, granularity)
			if committed >= maxSpots {
				uc.logger.Warn("RescheduleAppointment: bucket full, agenda=%d date=%s bucket=%d (%d/%d)",
					appointment.AgendaID, req.Date.Format(domain.DateFormat), idx, committed, maxSpots)
				return &capacity.CapacityExceededError{
					Bucket:             capacity.Bucket{AgendaID: appointment.AgendaID, Date: req.Date, Index: idx},
					GranularityMinutes: granularity,
					Capacity:           maxSpots,
					Committed:          committed,
				}
			}
		}

		// 2.8. Обновление слота в той же транзакции
		if err := uc.appointmentRepo.UpdateSlot(txCtx, appointment.ID, req.Date, req.StartTime,
			serviceID, service.Name, service.Duration()); err != nil {
			return fmt.Errorf("%w: failed to update slot: %v", ErrInternal, err)
		}

		appointment.Date = req.Date
		appointment.StartTime = req.StartTime
		appointment.ServiceID = serviceID
		appointment.ServiceName = service.Name
		appointment.DurationMinutes = service.Duration()
		result = appointment
		return nil
	})

	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("RescheduleAppointment: serialization conflict: %v", err)
			return nil, ErrBusy
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			uc.logger.Warn("RescheduleAppointment: request timed out: %v", err)
			return nil, ErrTimeout
		}
		return nil, err
	}

	uc.logger.Info("RescheduleAppointment: successfully moved appointment id=%d", result.ID)
	uc.changeNotifier.Publish(result.AgendaID, notifier.EventAppointmentRescheduled)

	return fromDomain(result), nil
}
