package reschedule_appointment

import (
	"errors"

	"github.com/duvan51/agenda-booking-engine/internal/capacity"
	"github.com/duvan51/agenda-booking-engine/internal/schedule"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input data")

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrAgendaNotFound возвращается, когда агенда записи не найдена
	ErrAgendaNotFound = errors.New("reschedule_appointment: agenda not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("reschedule_appointment: service not found")

	// ErrServiceNotOffered возвращается, когда услуга не подключена к агенде
	ErrServiceNotOffered = errors.New("reschedule_appointment: service is not offered on this agenda")

	// ErrNotReschedulable возвращается при попытке перенести отменённую запись
	ErrNotReschedulable = errors.New("reschedule_appointment: appointment cannot be rescheduled")

	// ErrInvalidDate возвращается при новой дате в прошлом
	ErrInvalidDate = errors.New("reschedule_appointment: invalid appointment date")

	// ErrOutsideSchedule возвращается, когда новое время закрыто расписанием
	ErrOutsideSchedule = schedule.ErrOutsideSchedule

	// ErrExceedsWindow возвращается, когда запись не помещается в открытое окно
	ErrExceedsWindow = schedule.ErrExceedsWindow

	// ErrSlotFull возвращается, когда целевой слот уже заполнен
	ErrSlotFull = capacity.ErrCapacityExceeded

	// ErrBusy возвращается при конфликте сериализации транзакций
	ErrBusy = errors.New("reschedule_appointment: concurrent booking conflict, retry")

	// ErrTimeout возвращается при истечении таймаута запроса
	ErrTimeout = errors.New("reschedule_appointment: request timed out")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
