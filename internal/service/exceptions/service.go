package exceptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
	catalogRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/catalog"
	exceptionRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/exception"
	"github.com/duvan51/agenda-booking-engine/internal/notifier"
	"github.com/duvan51/agenda-booking-engine/internal/service/exceptions/models"
)

// Service сервис для управления исключениями расписания.
// Исключения применяются к будущим проверкам; уже созданные записи
// под новой блокировкой остаются как есть, их судьбу решает оператор.
type Service struct {
	exceptionRepo  ExceptionRepository
	agendaRepo     AgendaRepository
	catalogRepo    CatalogRepository
	changeNotifier ChangeNotifier
	logger         Logger
}

// NewService создает новый экземпляр сервиса исключений
func NewService(
	exceptionRepo ExceptionRepository,
	agendaRepo AgendaRepository,
	catalogRepo CatalogRepository,
	changeNotifier ChangeNotifier,
	logger Logger,
) *Service {
	return &Service{
		exceptionRepo:  exceptionRepo,
		agendaRepo:     agendaRepo,
		catalogRepo:    catalogRepo,
		changeNotifier: changeNotifier,
		logger:         logger,
	}
}

// Create создает новое исключение расписания
func (s *Service) Create(ctx context.Context, req *models.CreateExceptionRequest) (*models.ExceptionResponse, error) {
	s.logger.Info("Create: creating exception for agenda=%d, kind=%d, dates=%s..%s",
		req.AgendaID, req.Kind, req.DateStart.Format(domain.DateFormat), req.DateEnd.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := s.validateCreateRequest(req); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	// 2. Агенда существует?
	if _, err := s.agendaRepo.GetByID(ctx, req.AgendaID); err != nil {
		if errors.Is(err, agendaRepo.ErrAgendaNotFound) {
			s.logger.Warn("Create: agenda id=%d not found", req.AgendaID)
			return nil, ErrAgendaNotFound
		}
		s.logger.Error("Create: failed to get agenda id=%d: %v", req.AgendaID, err)
		return nil, fmt.Errorf("%w: failed to get agenda: %v", ErrInternal, err)
	}

	// 3. Услуга исключения подключена к агенде?
	if req.ServiceID != nil {
		if _, err := s.catalogRepo.GetOffering(ctx, req.AgendaID, *req.ServiceID); err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotOffered) {
				s.logger.Warn("Create: service id=%d is not offered on agenda id=%d",
					*req.ServiceID, req.AgendaID)
				return nil, ErrServiceNotOffered
			}
			s.logger.Error("Create: failed to get offering: %v", err)
			return nil, fmt.Errorf("%w: failed to get offering: %v", ErrInternal, err)
		}
	}

	// 4. Создаем исключение
	created, err := s.exceptionRepo.Create(ctx, req.ToDomainException())
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created exception id=%d", created.ID)
	s.changeNotifier.Publish(created.AgendaID, notifier.EventExceptionChanged)

	return models.FromDomainException(created), nil
}

// Delete удаляет исключение расписания
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Info("Delete: deleting exception id=%d", id)

	if id <= 0 {
		return fmt.Errorf("%w: exception id must be positive", ErrInvalidInput)
	}

	// AgendaID нужен для уведомления, читаем до удаления
	exception, err := s.exceptionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, exceptionRepo.ErrExceptionNotFound) {
			s.logger.Warn("Delete: exception id=%d not found", id)
			return ErrExceptionNotFound
		}
		s.logger.Error("Delete: repository error for exception id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	if err := s.exceptionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, exceptionRepo.ErrExceptionNotFound) {
			return ErrExceptionNotFound
		}
		s.logger.Error("Delete: failed to delete exception id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted exception id=%d", id)
	s.changeNotifier.Publish(exception.AgendaID, notifier.EventExceptionChanged)

	return nil
}

// validateCreateRequest валидирует запрос на создание исключения
func (s *Service) validateCreateRequest(req *models.CreateExceptionRequest) error {
	if req.AgendaID <= 0 {
		return fmt.Errorf("%w: agendaID must be positive", ErrInvalidInput)
	}

	if req.DateStart.IsZero() || req.DateEnd.IsZero() {
		return fmt.Errorf("%w: dateStart and dateEnd are required", ErrInvalidInput)
	}

	if req.DateEnd.Before(req.DateStart) {
		return fmt.Errorf("%w: dateEnd must not be before dateStart", ErrInvalidInput)
	}

	kind := domain.ExceptionKind(req.Kind)
	if kind != domain.ExceptionBlock && kind != domain.ExceptionEnable {
		return fmt.Errorf("%w: kind must be 1 (block) or 2 (enable)", ErrInvalidInput)
	}

	if req.ServiceID != nil && *req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	// Диапазон времени либо задан целиком, либо не задан вовсе
	if (req.StartTime == nil) != (req.EndTime == nil) {
		return fmt.Errorf("%w: startTime and endTime must be provided together", ErrInvalidInput)
	}

	if req.StartTime != nil {
		if err := req.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
		}
		if *req.EndTime != "24:00" {
			if err := req.EndTime.Validate(); err != nil {
				return fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
			}
		}
		if !req.StartTime.IsBefore(*req.EndTime) {
			return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
		}
	}

	if req.StartTime == nil && !req.WholeDay {
		return fmt.Errorf("%w: either a time range or wholeDay is required", ErrInvalidInput)
	}

	return nil
}
