package schedule

import (
	"fmt"
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// RuleSet все правила расписания одной агенды, действующие на дату запроса.
// Загружается репозиторием расписания целиком; резолвер работает только
// с данными в памяти и не ходит в базу.
type RuleSet struct {
	WorkingHours []domain.WorkingHourRule
	ServiceRules []domain.ServiceScheduleRule
	Exceptions   []domain.BlockException
}

// Reason причина решения об открытости слота
type Reason string

const (
	ReasonOpen          Reason = "open"
	ReasonNoRulesForDay Reason = "no_rules_for_day"
	ReasonBlocked       Reason = "blocked_by_exception"
	ReasonOutsideHours  Reason = "outside_working_hours"
)

// Decision результат проверки открытости конкретного момента времени
type Decision struct {
	Open   bool
	Reason Reason
}

// Resolver чистый резолвер правил расписания.
//
// Порядок применения (каждый следующий шаг переопределяет предыдущий):
//  1. базовые окна: правила услуги, если у неё есть хоть одно правило
//     в этой агенде, иначе общие рабочие часы агенды;
//  2. вычитание общих блокировок (BLOCK без услуги);
//  3. вычитание блокировок, привязанных к запрошенной услуге;
//  4. добавление общих открытий (ENABLE без услуги);
//  5. добавление открытий, привязанных к запрошенной услуге.
//
// ENABLE добавляется после вычитания блокировок, поэтому при пересечении
// в одной и той же минуте всегда выигрывает ручное открытие.
type Resolver struct {
	// DefaultClosedDay: день без единого правила считается закрытым.
	// При false день без правил открыт полностью.
	DefaultClosedDay bool
}

// DayIndex индекс дня недели в нумерации расписаний: 0=понедельник .. 6=воскресенье
func DayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// WindowsFor возвращает итоговый набор открытых окон для (даты, услуги).
// serviceID nil означает проверку по общему расписанию агенды.
func (r Resolver) WindowsFor(rs RuleSet, date time.Time, serviceID *int64) ([]Window, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	windows, err := r.baseWindows(rs, date, serviceID)
	if err != nil {
		return nil, err
	}

	// Блокировки: сначала общие, затем привязанные к услуге
	for _, e := range rs.Exceptions {
		if e.Kind != domain.ExceptionBlock || !e.CoversDate(date) {
			continue
		}
		if !e.IsAgendaWide() && (serviceID == nil || *e.ServiceID != *serviceID) {
			continue
		}
		iv, err := exceptionInterval(&e)
		if err != nil {
			return nil, err
		}
		windows = subtract(windows, iv)
	}

	// Открытия поверх заблокированного или закрытого расписания
	for _, e := range rs.Exceptions {
		if e.Kind != domain.ExceptionEnable || !e.CoversDate(date) {
			continue
		}
		if !e.IsAgendaWide() && (serviceID == nil || *e.ServiceID != *serviceID) {
			continue
		}
		iv, err := exceptionInterval(&e)
		if err != nil {
			return nil, err
		}
		windows = add(windows, iv)
	}

	return normalize(windows), nil
}

// IsOpen решает, открыт ли конкретный момент времени для записи
func (r Resolver) IsOpen(rs RuleSet, date time.Time, t types.TimeString, serviceID *int64) (Decision, error) {
	minute, err := t.MinuteOfDay()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	windows, err := r.WindowsFor(rs, date, serviceID)
	if err != nil {
		return Decision{}, err
	}

	if _, ok := windowContaining(windows, minute); ok {
		return Decision{Open: true, Reason: ReasonOpen}, nil
	}

	return Decision{Open: false, Reason: r.closedReason(rs, date, minute, serviceID)}, nil
}

// FitsWindow проверяет, что весь интервал [start, start+duration) лежит
// внутри одного непрерывного открытого окна. Возвращает ErrOutsideSchedule,
// если время закрыто, или ExceedsWindowError, если запись вылезает за окно.
func (r Resolver) FitsWindow(rs RuleSet, date time.Time, start types.TimeString, durationMinutes int, serviceID *int64) error {
	if durationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}

	minute, err := start.MinuteOfDay()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	windows, err := r.WindowsFor(rs, date, serviceID)
	if err != nil {
		return err
	}

	w, ok := windowContaining(windows, minute)
	if !ok {
		return ErrOutsideSchedule
	}

	if end := minute + durationMinutes; end > w.End {
		return &ExceedsWindowError{
			Window:         w,
			OverrunMinutes: end - w.End,
		}
	}

	return nil
}

// baseWindows вычисляет базовый набор окон до применения исключений
func (r Resolver) baseWindows(rs RuleSet, date time.Time, serviceID *int64) ([]Window, error) {
	day := DayIndex(date)
	windows := make([]Window, 0, 2)

	if serviceID != nil && hasServiceRules(rs.ServiceRules, *serviceID) {
		// Услуга с собственным расписанием ограничена только им,
		// общие часы агенды игнорируются
		for _, rule := range rs.ServiceRules {
			if rule.ServiceID != *serviceID || rule.DayOfWeek != day {
				continue
			}
			w, err := ruleWindow(rule.StartTime, rule.EndTime)
			if err != nil {
				return nil, err
			}
			windows = append(windows, w)
		}
		return normalize(windows), nil
	}

	for _, rule := range rs.WorkingHours {
		if rule.DayOfWeek != day {
			continue
		}
		w, err := ruleWindow(rule.StartTime, rule.EndTime)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	if len(windows) == 0 && !r.DefaultClosedDay {
		return []Window{fullDay()}, nil
	}

	return normalize(windows), nil
}

// closedReason уточняет причину отказа для диагностики клиенту
func (r Resolver) closedReason(rs RuleSet, date time.Time, minute int, serviceID *int64) Reason {
	base, err := r.baseWindows(rs, date, serviceID)
	if err != nil {
		return ReasonOutsideHours
	}
	if _, ok := windowContaining(base, minute); ok {
		// Базовое расписание открыто, закрыла блокировка
		return ReasonBlocked
	}
	if len(base) == 0 {
		return ReasonNoRulesForDay
	}
	return ReasonOutsideHours
}

func hasServiceRules(rules []domain.ServiceScheduleRule, serviceID int64) bool {
	for _, rule := range rules {
		if rule.ServiceID == serviceID {
			return true
		}
	}
	return false
}

func ruleWindow(start, end types.TimeString) (Window, error) {
	s, err := start.MinuteOfDay()
	if err != nil {
		return Window{}, fmt.Errorf("%w: rule start time: %v", ErrInvalidInput, err)
	}
	e, err := minuteOfDayOrMidnight(end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: rule end time: %v", ErrInvalidInput, err)
	}
	return Window{Start: s, End: e}, nil
}

// exceptionInterval вычисляет затронутый исключением интервал.
// Диапазон времени на записи сужает исключение даже при выставленном
// whole-day флаге; без диапазона исключение действует на все сутки.
func exceptionInterval(e *domain.BlockException) (Window, error) {
	if !e.HasTimeRange() {
		return fullDay(), nil
	}
	s, err := e.StartTime.MinuteOfDay()
	if err != nil {
		return Window{}, fmt.Errorf("%w: exception start time: %v", ErrInvalidInput, err)
	}
	end, err := minuteOfDayOrMidnight(*e.EndTime)
	if err != nil {
		return Window{}, fmt.Errorf("%w: exception end time: %v", ErrInvalidInput, err)
	}
	return Window{Start: s, End: end}, nil
}

// minuteOfDayOrMidnight принимает "24:00" как конец суток
func minuteOfDayOrMidnight(t types.TimeString) (int, error) {
	if t == "24:00" {
		return domain.MinutesPerDay, nil
	}
	return t.MinuteOfDay()
}
