package exceptions

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("exceptions: invalid input data")

	// ErrAgendaNotFound возвращается, когда агенда не найдена
	ErrAgendaNotFound = errors.New("exceptions: agenda not found")

	// ErrServiceNotOffered возвращается, когда услуга исключения
	// не подключена к агенде
	ErrServiceNotOffered = errors.New("exceptions: service is not offered on this agenda")

	// ErrExceptionNotFound возвращается, когда исключение не найдено
	ErrExceptionNotFound = errors.New("exceptions: exception not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("exceptions: internal error")
)
