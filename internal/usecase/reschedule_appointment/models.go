package reschedule_appointment

import (
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// Request модель запроса на перенос записи на другой слот
type Request struct {
	AppointmentID int64            // ID переносимой записи
	Date          time.Time        // Новая дата
	StartTime     types.TimeString // Новое время начала

	// NewServiceID позволяет одновременно с переносом сменить услугу;
	// nil — услуга остаётся прежней
	NewServiceID *int64
}

// Response модель ответа с обновлённой записью
type Response struct {
	ID              int64
	AgendaID        int64
	ServiceID       int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          string
	ServiceName     string
	CustomerName    string
}

func fromDomain(a *domain.Appointment) *Response {
	return &Response{
		ID:              a.ID,
		AgendaID:        a.AgendaID,
		ServiceID:       a.ServiceID,
		Date:            a.Date,
		StartTime:       a.StartTime,
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		ServiceName:     a.ServiceName,
		CustomerName:    a.CustomerName,
	}
}
