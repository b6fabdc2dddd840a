package models

import (
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// CreateExceptionRequest модель запроса на создание исключения расписания
type CreateExceptionRequest struct {
	AgendaID  int64
	DateStart time.Time
	DateEnd   time.Time

	// Пара StartTime/EndTime сужает исключение до диапазона внутри суток;
	// без неё исключение действует на весь день
	StartTime *types.TimeString
	EndTime   *types.TimeString
	WholeDay  bool

	// ServiceID привязывает исключение к услуге; nil действует на всю агенду
	ServiceID *int64

	// Kind: 1 закрывает окно, 2 принудительно открывает
	Kind   int
	Reason *string
}

// ExceptionResponse модель ответа с данными исключения
type ExceptionResponse struct {
	ID        int64             `json:"id"`
	AgendaID  int64             `json:"agendaId"`
	DateStart string            `json:"dateStart"`
	DateEnd   string            `json:"dateEnd"`
	StartTime *types.TimeString `json:"startTime,omitempty"`
	EndTime   *types.TimeString `json:"endTime,omitempty"`
	WholeDay  bool              `json:"wholeDay"`
	ServiceID *int64            `json:"serviceId,omitempty"`
	Kind      int               `json:"kind"`
	Reason    *string           `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ToDomainException конвертирует запрос в domain модель
func (r *CreateExceptionRequest) ToDomainException() *domain.BlockException {
	return &domain.BlockException{
		AgendaID:  r.AgendaID,
		DateStart: r.DateStart,
		DateEnd:   r.DateEnd,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		WholeDay:  r.WholeDay,
		ServiceID: r.ServiceID,
		Kind:      domain.ExceptionKind(r.Kind),
		Reason:    r.Reason,
	}
}

// FromDomainException конвертирует domain модель в модель ответа
func FromDomainException(e *domain.BlockException) *ExceptionResponse {
	return &ExceptionResponse{
		ID:        e.ID,
		AgendaID:  e.AgendaID,
		DateStart: e.DateStart.Format(domain.DateFormat),
		DateEnd:   e.DateEnd.Format(domain.DateFormat),
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		WholeDay:  e.WholeDay,
		ServiceID: e.ServiceID,
		Kind:      int(e.Kind),
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}
