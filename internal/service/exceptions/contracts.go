package exceptions

import (
	"context"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/internal/notifier"
)

// ExceptionRepository интерфейс репозитория исключений расписания
type ExceptionRepository interface {
	Create(ctx context.Context, e *domain.BlockException) (*domain.BlockException, error)
	GetByID(ctx context.Context, id int64) (*domain.BlockException, error)
	Delete(ctx context.Context, id int64) error
}

// AgendaRepository интерфейс репозитория агенд
type AgendaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Agenda, error)
}

// CatalogRepository интерфейс репозитория каталога услуг
type CatalogRepository interface {
	GetOffering(ctx context.Context, agendaID, serviceID int64) (*domain.AgendaServiceOffering, error)
}

// ChangeNotifier интерфейс уведомителя об изменениях расписания
type ChangeNotifier interface {
	Publish(agendaID int64, kind notifier.EventKind)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
