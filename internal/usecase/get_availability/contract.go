package get_availability

import (
	"context"
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/internal/schedule"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
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

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
