package get_availability

import (
	"github.com/duvan51/agenda-booking-engine/internal/domain"
	getAvailability "github.com/duvan51/agenda-booking-engine/internal/usecase/get_availability"
)

// WindowResponse открытое окно расписания
type WindowResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// BucketResponse доступность одного интервала гранулярности
type BucketResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
}

// SlotResponse решение об открытости запрошенного момента
type SlotResponse struct {
	Time   string `json:"time"`
	Open   bool   `json:"open"`
	Reason string `json:"reason"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	AgendaID           int64            `json:"agendaId"`
	Date               string           `json:"date"`
	GranularityMinutes int              `json:"granularityMinutes"`
	Windows            []WindowResponse `json:"windows"`
	Buckets            []BucketResponse `json:"buckets"`
	Slot               *SlotResponse    `json:"slot,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		AgendaID:           resp.AgendaID,
		Date:               resp.Date.Format(domain.DateFormat),
		GranularityMinutes: resp.GranularityMinutes,
		Windows:            make([]WindowResponse, 0, len(resp.Windows)),
		Buckets:            make([]BucketResponse, 0, len(resp.Buckets)),
	}

	for _, w := range resp.Windows {
		out.Windows = append(out.Windows, WindowResponse{
			StartTime: w.StartTime.String(),
			EndTime:   w.EndTime.String(),
		})
	}

	for _, b := range resp.Buckets {
		out.Buckets = append(out.Buckets, BucketResponse{
			StartTime: b.StartTime.String(),
			EndTime:   b.EndTime.String(),
			Total:     b.Total,
			Available: b.Available,
		})
	}

	if resp.Slot != nil {
		out.Slot = &SlotResponse{
			Time:   resp.Slot.Time.String(),
			Open:   resp.Slot.Open,
			Reason: string(resp.Slot.Reason),
		}
	}

	return out
}
