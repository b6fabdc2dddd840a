package domain

import (
	"time"

	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a customer appointment (cita) in an agenda
type Appointment struct {
	ID              int64
	AgendaID        int64
	ServiceID       int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// Denormalized service data for history
	ServiceName string

	// Customer attributes, opaque to the booking engine
	CustomerName     string
	CustomerDocument *string
	CustomerPhone    *string
	CustomerEmail    *string
	Notes            *string

	// Deduplication key supplied by the caller; nil when the client
	// did not request idempotent booking
	IdempotencyKey *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment still occupies capacity
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the appointment slot can be changed
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeConfirmed returns true if the appointment is awaiting confirmation
func (a *Appointment) CanBeConfirmed() bool {
	return a.Status == StatusPending
}

// EndTime returns the exclusive end of the appointment interval
func (a *Appointment) EndTime() (types.TimeString, error) {
	return a.StartTime.AddMinutes(a.DurationMinutes)
}

// AgendaAppointmentsFilter фильтр для выборки записей агенды
type AgendaAppointmentsFilter struct {
	AgendaID         int64              // Обязательный параметр
	Date             *time.Time         // Конкретная дата (опционально)
	ServiceID        *int64             // Фильтр по услуге (опционально)
	Status           *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeCancelled bool               // Включать ли отменённые записи
}

// ValidStatuses допустимые статусы записи
var ValidStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
}

// ParseStatus конвертирует строку в AppointmentStatus
func ParseStatus(s string) (AppointmentStatus, bool) {
	for _, status := range ValidStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}
