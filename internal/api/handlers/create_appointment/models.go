package create_appointment

import (
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	createAppointment "github.com/duvan51/agenda-booking-engine/internal/usecase/create_appointment"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	AgendaID  int64  `json:"agendaId"`
	ServiceID int64  `json:"serviceId"`
	Date      string `json:"date"`      // "2026-09-15"
	StartTime string `json:"startTime"` // "10:00"

	CustomerName     string  `json:"customerName"`
	CustomerDocument *string `json:"customerDocument,omitempty"`
	CustomerPhone    *string `json:"customerPhone,omitempty"`
	CustomerEmail    *string `json:"customerEmail,omitempty"`
	Notes            *string `json:"notes,omitempty"`

	IdempotencyKey *string `json:"idempotencyKey,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64  `json:"id"`
	AgendaID        int64  `json:"agendaId"`
	ServiceID       int64  `json:"serviceId"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	ServiceName      string  `json:"serviceName"`
	CustomerName     string  `json:"customerName"`
	CustomerDocument *string `json:"customerDocument,omitempty"`
	CustomerPhone    *string `json:"customerPhone,omitempty"`
	CustomerEmail    *string `json:"customerEmail,omitempty"`
	Notes            *string `json:"notes,omitempty"`

	Replayed bool `json:"replayed,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest() (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		AgendaID:         r.AgendaID,
		ServiceID:        r.ServiceID,
		Date:             date,
		StartTime:        startTime,
		CustomerName:     r.CustomerName,
		CustomerDocument: r.CustomerDocument,
		CustomerPhone:    r.CustomerPhone,
		CustomerEmail:    r.CustomerEmail,
		Notes:            r.Notes,
		IdempotencyKey:   r.IdempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:               resp.ID,
		AgendaID:         resp.AgendaID,
		ServiceID:        resp.ServiceID,
		Date:             resp.Date.Format(domain.DateFormat),
		StartTime:        resp.StartTime.String(),
		DurationMinutes:  resp.DurationMinutes,
		Status:           resp.Status,
		ServiceName:      resp.ServiceName,
		CustomerName:     resp.CustomerName,
		CustomerDocument: resp.CustomerDocument,
		CustomerPhone:    resp.CustomerPhone,
		CustomerEmail:    resp.CustomerEmail,
		Notes:            resp.Notes,
		Replayed:         resp.Replayed,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        resp.UpdatedAt.Format(time.RFC3339),
	}
}
