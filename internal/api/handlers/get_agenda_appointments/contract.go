package get_agenda_appointments

import (
	"context"

	"github.com/duvan51/agenda-booking-engine/internal/service/appointments/models"
)

type AppointmentsService interface {
	GetAgendaAppointments(ctx context.Context, req *models.GetAgendaAppointmentsRequest) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
