package get_availability

import (
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/schedule"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// Request модель запроса доступности агенды на дату
type Request struct {
	AgendaID int64     // ID агенды
	Date     time.Time // Дата запроса

	// ServiceID сужает проверку до расписания конкретной услуги (опционально)
	ServiceID *int64

	// Time: при указании ответ дополняется решением об открытости
	// этого конкретного момента (опционально)
	Time *types.TimeString
}

// WindowInfo открытое окно расписания
type WindowInfo struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}

// BucketInfo доступность одного интервала гранулярности внутри открытых окон
type BucketInfo struct {
	StartTime types.TimeString
	EndTime   types.TimeString
	Total     int // вместимость интервала
	Available int // оставшиеся места
}

// SlotDecision решение об открытости запрошенного момента времени
type SlotDecision struct {
	Time   types.TimeString
	Open   bool
	Reason schedule.Reason
}

// Response модель ответа с доступностью на дату
type Response struct {
	AgendaID           int64
	Date               time.Time
	GranularityMinutes int

	Windows []WindowInfo
	Buckets []BucketInfo

	// Slot заполняется только при запросе конкретного времени
	Slot *SlotDecision
}
