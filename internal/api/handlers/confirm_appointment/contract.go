package confirm_appointment

import (
	"context"

	"github.com/duvan51/agenda-booking-engine/internal/service/appointments/models"
)

type AppointmentsService interface {
	Confirm(ctx context.Context, id int64) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
