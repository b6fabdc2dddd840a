package domain

import (
	"time"

	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// WorkingHourRule recurring weekly open window for an agenda.
// Several rules per day are allowed; absence of rules for a day means the
// day is closed (when the agenda keeps defaultClosedDay enabled).
type WorkingHourRule struct {
	ID        int64
	AgendaID  int64
	DayOfWeek int // 0=Monday .. 6=Sunday
	StartTime types.TimeString
	EndTime   types.TimeString
}

// ServiceScheduleRule recurring weekly open window specific to one service
// within one agenda. If a service has at least one rule anywhere, it is
// restricted to the union of its own rules and ignores the agenda's general
// working hours.
type ServiceScheduleRule struct {
	ID        int64
	AgendaID  int64
	ServiceID int64
	DayOfWeek int
	StartTime types.TimeString
	EndTime   types.TimeString
}

// ExceptionKind вид исключения: закрытие или ручное открытие
type ExceptionKind int

const (
	// ExceptionBlock закрывает окно, открытое базовым расписанием
	ExceptionBlock ExceptionKind = 1
	// ExceptionEnable открывает окно поверх закрытого расписания;
	// при пересечении с блокировкой всегда выигрывает
	ExceptionEnable ExceptionKind = 2
)

// BlockException a dated exception over the recurring schedule.
// Covers an inclusive date range; WholeDay или пара StartTime/EndTime
// задают затронутые часы. ServiceID nil means the exception is agenda-wide.
type BlockException struct {
	ID        int64
	AgendaID  int64
	DateStart time.Time
	DateEnd   time.Time
	StartTime *types.TimeString
	EndTime   *types.TimeString
	WholeDay  bool
	ServiceID *int64
	Kind      ExceptionKind
	Reason    *string

	CreatedAt time.Time
}

// CoversDate возвращает true, если исключение действует в указанную дату
func (e *BlockException) CoversDate(date time.Time) bool {
	day := truncateToDay(date)
	return !day.Before(truncateToDay(e.DateStart)) && !day.After(truncateToDay(e.DateEnd))
}

// HasTimeRange возвращает true, если на исключении задан диапазон времени
func (e *BlockException) HasTimeRange() bool {
	return e.StartTime != nil && e.EndTime != nil && !e.StartTime.IsZero() && !e.EndTime.IsZero()
}

// IsAgendaWide возвращает true для исключений без привязки к услуге
func (e *BlockException) IsAgendaWide() bool {
	return e.ServiceID == nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
