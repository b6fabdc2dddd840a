package create_appointment

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

// UseCase use case создания записи (бронирования слота).
//
// Проверка расписания, пересчёт занятости бакетов и вставка записи
// выполняются одной сериализуемой транзакцией с блокировкой строк дня.
// Легаси-клиент проверял доступность на своей стороне и писал без проверки —
// два агента, увидевшие одно свободное место, бронировали его оба.
// Здесь авторитетная проверка живёт внутри транзакции, и гонка разрешается
// детерминированно: один получает запись, второй — SlotFull.
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

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: agenda=%d, service=%d, date=%s, time=%s",
		req.AgendaID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var result *domain.Appointment
	var replayed bool

	// 2. Все проверки и вставка — одна сериализуемая транзакция
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Агенда и её настройки движка
		agenda, err := uc.agendaRepo.GetByID(txCtx, req.AgendaID)
		if err != nil {
			if errors.Is(err, agendaRepo.ErrAgendaNotFound) {
				uc.logger.Warn("CreateAppointment: agenda id=%d not found", req.AgendaID)
				return ErrAgendaNotFound
			}
			return fmt.Errorf("%w: failed to get agenda: %v", ErrInternal, err)
		}

		// 2.2. Услуга подключена к агенде?
		if _, err := uc.catalogRepo.GetOffering(txCtx, req.AgendaID, req.ServiceID); err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotOffered) {
				uc.logger.Warn("CreateAppointment: service id=%d not offered on agenda id=%d",
					req.ServiceID, req.AgendaID)
				return ErrServiceNotOffered
			}
			return fmt.Errorf("%w: failed to get offering: %v", ErrInternal, err)
		}

		// 2.3. Длительность и concurrency услуги
		service, err := uc.catalogRepo.GetServiceByID(txCtx, req.ServiceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		// 2.4. Дата не в прошлом
		if err := validateDate(req.Date, now); err != nil {
			uc.logger.Warn("CreateAppointment: date validation failed: %v", err)
			return err
		}

		// 2.5. Повтор по ключу идемпотентности возвращает исходную запись
		if req.IdempotencyKey != nil {
			existing, err := uc.appointmentRepo.GetByIdempotencyKey(txCtx, req.AgendaID, *req.IdempotencyKey)
			if err == nil {
				uc.logger.Info("CreateAppointment: idempotency key replay, returning appointment id=%d", existing.ID)
				result = existing
				replayed = true
				return nil
			}
			if !errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return fmt.Errorf("%w: failed to check idempotency key: %v", ErrInternal, err)
			}
		}

		// 2.6. Расписание: слот открыт и запись помещается в окно целиком
		ruleSet, err := uc.scheduleRepo.GetRuleSet(txCtx, req.AgendaID, req.Date)
		if err != nil {
			return fmt.Errorf("%w: failed to get rule set: %v", ErrInternal, err)
		}

		resolver := schedule.Resolver{DefaultClosedDay: agenda.DefaultClosedDay}
		if err := resolver.FitsWindow(ruleSet, req.Date, req.StartTime, service.Duration(), &req.ServiceID); err != nil {
			if errors.Is(err, schedule.ErrInvalidInput) {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			uc.logger.Warn("CreateAppointment: schedule rejected slot: %v", err)
			return err
		}

		// 2.7. Записи дня с блокировкой строк (FOR UPDATE)
		appointments, err := uc.appointmentRepo.GetByAgendaWithFilter(txCtx, domain.AgendaAppointmentsFilter{
			AgendaID: req.AgendaID,
			Date:     &req.Date,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		// 2.8. Вместимость каждого затронутого бакета
		granularity := agenda.Granularity()
		buckets, err := capacity.TouchedBuckets(req.StartTime, service.Duration(), granularity)
		if err != nil {
			return fmt.Errorf("%w: failed to compute buckets: %v", ErrInvalidInput, err)
		}

		maxSpots := capacity.EffectiveCapacity(agenda, service)
		for _, idx := range buckets {
			committed := capacity.CountCommitted(appointments, idx, granularity)
			if committed >= maxSpots {
				uc.logger.Warn("CreateAppointment: bucket full, agenda=%d date=%s bucket=%d (%d/%d)",
					req.AgendaID, req.Date.Format(domain.DateFormat), idx, committed, maxSpots)
				return &capacity.CapacityExceededError{
					Bucket:             capacity.Bucket{AgendaID: req.AgendaID, Date: req.Date, Index: idx},
					GranularityMinutes: granularity,
					Capacity:           maxSpots,
					Committed:          committed,
				}
			}
		}

		// 2.9. Вставка записи в той же транзакции
		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			AgendaID:         req.AgendaID,
			ServiceID:        req.ServiceID,
			Date:             req.Date,
			StartTime:        req.StartTime,
			DurationMinutes:  service.Duration(),
			Status:           domain.StatusPending,
			ServiceName:      service.Name,
			CustomerName:     req.CustomerName,
			CustomerDocument: req.CustomerDocument,
			CustomerPhone:    req.CustomerPhone,
			CustomerEmail:    req.CustomerEmail,
			Notes:            req.Notes,
			IdempotencyKey:   req.IdempotencyKey,
		})
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrDuplicateIdempotencyKey) {
				// Ключ вставили между нашей проверкой и вставкой
				return ErrBusy
			}
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.mapTxError(ctx, err)
	}

	if !replayed {
		uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)
		// Уведомление после коммита: блокировки бронирования уже отпущены
		uc.changeNotifier.Publish(req.AgendaID, notifier.EventAppointmentCreated)
	}

	return fromDomain(result, replayed), nil
}

// mapTxError переводит инфраструктурные ошибки транзакции в таксономию usecase
func (uc *UseCase) mapTxError(ctx context.Context, err error) error {
	if txmanager.IsSerializationFailure(err) {
		uc.logger.Warn("CreateAppointment: serialization conflict: %v", err)
		return ErrBusy
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		uc.logger.Warn("CreateAppointment: request timed out: %v", err)
		return ErrTimeout
	}
	return err
}
