package create_exception

import (
	"context"

	"github.com/duvan51/agenda-booking-engine/internal/service/exceptions/models"
)

type ExceptionsService interface {
	Create(ctx context.Context, req *models.CreateExceptionRequest) (*models.ExceptionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
