package create_appointment

import (
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	AgendaID  int64            // ID агенды
	ServiceID int64            // ID услуги из каталога
	Date      time.Time        // Дата записи (без времени)
	StartTime types.TimeString // Время начала (например, "10:00")

	// Атрибуты клиента; движок их не интерпретирует
	CustomerName     string
	CustomerDocument *string
	CustomerPhone    *string
	CustomerEmail    *string
	Notes            *string

	// Ключ идемпотентности: повторный запрос с тем же ключом возвращает
	// уже созданную запись вместо второй (опционально)
	IdempotencyKey *string
}

// Response модель ответа с созданной записью
type Response struct {
	ID              int64
	AgendaID        int64
	ServiceID       int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          string

	ServiceName      string
	CustomerName     string
	CustomerDocument *string
	CustomerPhone    *string
	CustomerEmail    *string
	Notes            *string

	// Replayed: запись не создана, а возвращена по ключу идемпотентности
	Replayed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func fromDomain(a *domain.Appointment, replayed bool) *Response {
	return &Response{
		ID:               a.ID,
		AgendaID:         a.AgendaID,
		ServiceID:        a.ServiceID,
		Date:             a.Date,
		StartTime:        a.StartTime,
		DurationMinutes:  a.DurationMinutes,
		Status:           string(a.Status),
		ServiceName:      a.ServiceName,
		CustomerName:     a.CustomerName,
		CustomerDocument: a.CustomerDocument,
		CustomerPhone:    a.CustomerPhone,
		CustomerEmail:    a.CustomerEmail,
		Notes:            a.Notes,
		Replayed:         replayed,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
