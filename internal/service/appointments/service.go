package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
	appointmentRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/appointment"
	"github.com/duvan51/agenda-booking-engine/internal/notifier"
	"github.com/duvan51/agenda-booking-engine/internal/service/appointments/models"
)

// Service сервис для чтения и отмены записей.
//
// Создание и перенос живут в usecase-слое: им нужна сериализуемая
// транзакция с проверкой вместимости. Отмена место только освобождает,
// гонка ей не страшна, поэтому достаточно одного условного UPDATE.
type Service struct {
	appointmentRepo AppointmentRepository
	agendaRepo      AgendaRepository
	changeNotifier  ChangeNotifier
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	agendaRepo AgendaRepository,
	changeNotifier ChangeNotifier,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		agendaRepo:      agendaRepo,
		changeNotifier:  changeNotifier,
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appointment), nil
}

// GetAgendaAppointments получает записи агенды с гибкой фильтрацией.
// Поддерживает фильтрацию по дате, услуге, статусу и включению отменённых.
func (s *Service) GetAgendaAppointments(ctx context.Context, req *models.GetAgendaAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetAgendaAppointments: fetching appointments for agenda=%d", req.AgendaID)

	if req.AgendaID <= 0 {
		return nil, fmt.Errorf("%w: agendaID must be positive", ErrInvalidInput)
	}

	// Фильтр по несуществующей агенде — это 404, не пустой список
	if _, err := s.agendaRepo.GetByID(ctx, req.AgendaID); err != nil {
		if errors.Is(err, agendaRepo.ErrAgendaNotFound) {
			s.logger.Warn("GetAgendaAppointments: agenda id=%d not found", req.AgendaID)
			return nil, ErrAgendaNotFound
		}
		s.logger.Error("GetAgendaAppointments: failed to get agenda id=%d: %v", req.AgendaID, err)
		return nil, fmt.Errorf("%w: failed to get agenda: %v", ErrInternal, err)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetAgendaAppointments: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	appointments, err := s.appointmentRepo.GetByAgendaWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetAgendaAppointments: repository error for agenda=%d: %v", req.AgendaID, err)
		return nil, fmt.Errorf("%w: GetAgendaAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAgendaAppointments: successfully fetched %d appointments for agenda=%d",
		len(appointments), req.AgendaID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Confirm переводит запись из pending в confirmed. Подтверждение не меняет
// занятость: место удерживается с момента создания, поэтому достаточно
// обычного UPDATE без сериализуемой транзакции.
func (s *Service) Confirm(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("Confirm: confirming appointment id=%d", id)

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Confirm: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Confirm: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	if !appointment.CanBeConfirmed() {
		s.logger.Warn("Confirm: appointment id=%d has status %s", id, appointment.Status)
		return nil, ErrNotConfirmable
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, domain.StatusConfirmed); err != nil {
		s.logger.Error("Confirm: failed to confirm appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	confirmed, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Confirm: failed to reload appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Confirm: successfully confirmed appointment id=%d", id)
	return models.FromDomainAppointment(confirmed), nil
}

// Cancel отменяет запись. Операция идемпотентна на уровне данных:
// повторная отмена сообщает ErrAlreadyCancelled, но состояние не меняет.
func (s *Service) Cancel(ctx context.Context, id int64, reason *string) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d", id)

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !appointment.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d is already cancelled", id)
		return nil, ErrAlreadyCancelled
	}

	if err := s.appointmentRepo.Cancel(ctx, id, reason); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			// UPDATE с условием status <> 'cancelled' не нашёл строку:
			// запись отменили параллельно
			s.logger.Warn("Cancel: appointment id=%d was cancelled concurrently", id)
			return nil, ErrAlreadyCancelled
		}
		s.logger.Error("Cancel: failed to cancel appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	cancelled, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Cancel: failed to reload appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", id)
	s.changeNotifier.Publish(cancelled.AgendaID, notifier.EventAppointmentCancelled)

	return models.FromDomainAppointment(cancelled), nil
}
