package create_exception

import (
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/internal/service/exceptions/models"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// CreateExceptionRequest HTTP request model
type CreateExceptionRequest struct {
	DateStart string  `json:"dateStart"` // "2026-09-15"
	DateEnd   string  `json:"dateEnd"`   // "2026-09-15"
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	WholeDay  bool    `json:"wholeDay"`
	ServiceID *int64  `json:"serviceId,omitempty"`
	Kind      int     `json:"kind"` // 1 = block, 2 = enable
	Reason    *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateExceptionRequest) ToServiceRequest(agendaID int64) (*models.CreateExceptionRequest, error) {
	dateStart, err := time.Parse(domain.DateFormat, r.DateStart)
	if err != nil {
		return nil, err
	}
	dateEnd, err := time.Parse(domain.DateFormat, r.DateEnd)
	if err != nil {
		return nil, err
	}

	req := &models.CreateExceptionRequest{
		AgendaID:  agendaID,
		DateStart: dateStart,
		DateEnd:   dateEnd,
		WholeDay:  r.WholeDay,
		ServiceID: r.ServiceID,
		Kind:      r.Kind,
		Reason:    r.Reason,
	}

	if r.StartTime != nil {
		t := types.TimeString(*r.StartTime)
		req.StartTime = &t
	}
	if r.EndTime != nil {
		t := types.TimeString(*r.EndTime)
		req.EndTime = &t
	}

	return req, nil
}
