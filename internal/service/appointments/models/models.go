package models

import (
	"fmt"
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// AppointmentResponse модель ответа с данными записи
type AppointmentResponse struct {
	ID              int64            `json:"id"`
	AgendaID        int64            `json:"agendaId"`
	ServiceID       int64            `json:"serviceId"`
	Date            string           `json:"date"`
	StartTime       types.TimeString `json:"startTime"`
	EndTime         types.TimeString `json:"endTime"`
	DurationMinutes int              `json:"durationMinutes"`
	Status          string           `json:"status"`

	ServiceName      string  `json:"serviceName"`
	CustomerName     string  `json:"customerName"`
	CustomerDocument *string `json:"customerDocument,omitempty"`
	CustomerPhone    *string `json:"customerPhone,omitempty"`
	CustomerEmail    *string `json:"customerEmail,omitempty"`
	Notes            *string `json:"notes,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse модель ответа со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// GetAgendaAppointmentsRequest модель запроса списка записей агенды
type GetAgendaAppointmentsRequest struct {
	AgendaID         int64
	Date             *time.Time
	ServiceID        *int64
	Status           *string
	IncludeCancelled bool
}

// ToDomainFilter конвертирует запрос в domain фильтр
func (r *GetAgendaAppointmentsRequest) ToDomainFilter() (domain.AgendaAppointmentsFilter, error) {
	filter := domain.AgendaAppointmentsFilter{
		AgendaID:         r.AgendaID,
		Date:             r.Date,
		ServiceID:        r.ServiceID,
		IncludeCancelled: r.IncludeCancelled,
	}

	if r.Status != nil {
		status, ok := domain.ParseStatus(*r.Status)
		if !ok {
			return domain.AgendaAppointmentsFilter{}, fmt.Errorf("unknown status %q", *r.Status)
		}
		filter.Status = &status
	}

	return filter, nil
}

// FromDomainAppointment конвертирует domain модель в модель ответа
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	endTime, err := a.EndTime()
	if err != nil {
		endTime = a.StartTime
	}

	return &AppointmentResponse{
		ID:                 a.ID,
		AgendaID:           a.AgendaID,
		ServiceID:          a.ServiceID,
		Date:               a.Date.Format(domain.DateFormat),
		StartTime:          a.StartTime,
		EndTime:            endTime,
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		ServiceName:        a.ServiceName,
		CustomerName:       a.CustomerName,
		CustomerDocument:   a.CustomerDocument,
		CustomerPhone:      a.CustomerPhone,
		CustomerEmail:      a.CustomerEmail,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в модель ответа
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
		Total:        len(list),
	}
	for _, a := range list {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	return resp
}
