package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput возвращается при некорректной дате или времени
	ErrInvalidInput = errors.New("schedule: invalid input")

	// ErrOutsideSchedule возвращается, когда запрошенное время закрыто
	// расписанием и исключениями
	ErrOutsideSchedule = errors.New("schedule: time is outside the open schedule")

	// ErrExceedsWindow возвращается, когда само время открыто, но интервал
	// записи не помещается в непрерывное открытое окно
	ErrExceedsWindow = errors.New("schedule: appointment does not fit inside the open window")
)

// ExceedsWindowError несёт детали нарушения для подсказки клиенту:
// в какое окно не поместилась запись и на сколько минут
type ExceedsWindowError struct {
	Window         Window
	OverrunMinutes int
}

func (e *ExceedsWindowError) Error() string {
	return fmt.Sprintf("%v: window %s-%s, overrun %d min",
		ErrExceedsWindow, e.Window.StartTime(), e.Window.EndTime(), e.OverrunMinutes)
}

func (e *ExceedsWindowError) Unwrap() error {
	return ErrExceedsWindow
}
