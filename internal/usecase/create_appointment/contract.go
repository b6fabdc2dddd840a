package create_appointment

import (
	"context"
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/internal/notifier"
	"github.com/duvan51/agenda-booking-engine/internal/schedule"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	GetByIdempotencyKey(ctx context.Context, agendaID int64, key string) (*domain.Appointment, error)
	GetByAgendaWithFilter(ctx context.Context, filter domain.AgendaAppointmentsFilter) ([]*domain.Appointment, error)
}

// AgendaRepository интерфейс репозитория агенд
type AgendaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Agenda, error)
}

// CatalogRepository интерфейс репозитория каталога услуг
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetOffering(ctx context.Context, agendaID, serviceID int64) (*domain.AgendaServiceOffering, error)
}

// ScheduleRepository интерфейс репозитория правил расписания
type ScheduleRepository interface {
	GetRuleSet(ctx context.Context, agendaID int64, date time.Time) (schedule.RuleSet, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// ChangeNotifier интерфейс уведомителя об изменениях расписания
type ChangeNotifier interface {
	Publish(agendaID int64, kind notifier.EventKind)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
