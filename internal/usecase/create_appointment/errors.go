package create_appointment

import (
	"errors"

	"github.com/duvan51/agenda-booking-engine/internal/capacity"
	"github.com/duvan51/agenda-booking-engine/internal/schedule"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrAgendaNotFound возвращается, когда агенда не найдена
	ErrAgendaNotFound = errors.New("create_appointment: agenda not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrServiceNotOffered возвращается, когда услуга не подключена к агенде
	ErrServiceNotOffered = errors.New("create_appointment: service is not offered on this agenda")

	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("create_appointment: invalid appointment date")

	// ErrOutsideSchedule возвращается, когда запрошенное время закрыто
	// расписанием и исключениями
	ErrOutsideSchedule = schedule.ErrOutsideSchedule

	// ErrExceedsWindow возвращается, когда запись не помещается в открытое
	// окно; ошибка несёт величину выхода за окно (schedule.ExceedsWindowError)
	ErrExceedsWindow = schedule.ErrExceedsWindow

	// ErrSlotFull возвращается при проигранной гонке за вместимость бакета;
	// ошибка несёт идентичность бакета (capacity.CapacityExceededError)
	ErrSlotFull = capacity.ErrCapacityExceeded

	// ErrBusy возвращается при конфликте сериализации транзакций —
	// клиент может повторить запрос с backoff
	ErrBusy = errors.New("create_appointment: concurrent booking conflict, retry")

	// ErrTimeout возвращается при истечении таймаута запроса
	ErrTimeout = errors.New("create_appointment: request timed out")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
