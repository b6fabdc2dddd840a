package create_appointment

import (
	"errors"
	"net/http"

	"github.com/duvan51/agenda-booking-engine/internal/api/handlers"
	createAppointment "github.com/duvan51/agenda-booking-engine/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные данные запроса"
	msgAgendaNotFound     = "агенда не найдена"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceNotOffered  = "услуга не подключена к агенде"
	msgInvalidBookingDate = "дата записи в прошлом"
	msgOutsideSchedule    = "выбранное время закрыто расписанием"
	msgExceedsWindow      = "запись не помещается в рабочее окно"
	msgSlotFull           = "выбранный слот уже заполнен"
	msgBusy               = "слот бронируется параллельно, повторите запрос"
	msgTimeout            = "превышено время ожидания запроса"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrSlotFull):
			h.logger.Warn("POST /appointments - Slot full: agenda_id=%d, date=%s, time=%s",
				req.AgendaID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotFull)

		case errors.Is(err, createAppointment.ErrBusy):
			h.logger.Warn("POST /appointments - Concurrent conflict: agenda_id=%d", req.AgendaID)
			handlers.RespondServiceUnavailable(w, msgBusy)

		case errors.Is(err, createAppointment.ErrTimeout):
			h.logger.Warn("POST /appointments - Timeout: agenda_id=%d", req.AgendaID)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgTimeout)

		case errors.Is(err, createAppointment.ErrAgendaNotFound):
			h.logger.Warn("POST /appointments - Agenda not found: agenda_id=%d", req.AgendaID)
			handlers.RespondNotFound(w, msgAgendaNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotOffered):
			h.logger.Warn("POST /appointments - Service not offered: agenda_id=%d, service_id=%d",
				req.AgendaID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotOffered)

		case errors.Is(err, createAppointment.ErrOutsideSchedule):
			h.logger.Warn("POST /appointments - Outside schedule: agenda_id=%d, date=%s, time=%s",
				req.AgendaID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgOutsideSchedule)

		case errors.Is(err, createAppointment.ErrExceedsWindow):
			h.logger.Warn("POST /appointments - Exceeds window: agenda_id=%d, date=%s, time=%s",
				req.AgendaID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgExceedsWindow)

		case errors.Is(err, createAppointment.ErrInvalidDate):
			h.logger.Warn("POST /appointments - Invalid booking date: agenda_id=%d, date=%s",
				req.AgendaID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: agenda_id=%d, error=%v",
				req.AgendaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	status := http.StatusCreated
	if result.Replayed {
		// Повтор по ключу идемпотентности возвращает уже созданную запись
		status = http.StatusOK
	}

	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, agenda_id=%d",
		result.ID, req.AgendaID)
	handlers.RespondJSON(w, status, response)
}
