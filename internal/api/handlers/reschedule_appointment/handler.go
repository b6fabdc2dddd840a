package reschedule_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/duvan51/agenda-booking-engine/internal/api/handlers"
	rescheduleAppointment "github.com/duvan51/agenda-booking-engine/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный идентификатор записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты или времени"
	msgInvalidInput         = "некорректные данные запроса"
	msgAppointmentNotFound  = "запись не найдена"
	msgAgendaNotFound       = "агенда не найдена"
	msgServiceNotFound      = "услуга не найдена"
	msgServiceNotOffered    = "услуга не подключена к агенде"
	msgNotReschedulable     = "отменённую запись нельзя перенести"
	msgInvalidBookingDate   = "новая дата записи в прошлом"
	msgOutsideSchedule      = "выбранное время закрыто расписанием"
	msgExceedsWindow        = "запись не помещается в рабочее окно"
	msgSlotFull             = "целевой слот уже заполнен"
	msgBusy                 = "слот бронируется параллельно, повторите запрос"
	msgTimeout              = "превышено время ожидания запроса"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/slot
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil || appointmentID <= 0 {
		h.logger.Warn("PATCH /appointments/{id}/slot - Invalid appointment ID: %s", vars["appointmentId"])
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/%d/slot - Invalid request body: %v", appointmentID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(appointmentID)
	if err != nil {
		h.logger.Warn("PATCH /appointments/%d/slot - Failed to parse request: %v", appointmentID, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrSlotFull):
			h.logger.Warn("PATCH /appointments/%d/slot - Slot full: date=%s, time=%s",
				appointmentID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotFull)

		case errors.Is(err, rescheduleAppointment.ErrBusy):
			h.logger.Warn("PATCH /appointments/%d/slot - Concurrent conflict", appointmentID)
			handlers.RespondServiceUnavailable(w, msgBusy)

		case errors.Is(err, rescheduleAppointment.ErrTimeout):
			h.logger.Warn("PATCH /appointments/%d/slot - Timeout", appointmentID)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgTimeout)

		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/%d/slot - Appointment not found", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, rescheduleAppointment.ErrAgendaNotFound):
			h.logger.Warn("PATCH /appointments/%d/slot - Agenda not found", appointmentID)
			handlers.RespondNotFound(w, msgAgendaNotFound)

		case errors.Is(err, rescheduleAppointment.ErrServiceNotFound):
			h.logger.Warn("PATCH /appointments/%d/slot - Service not found", appointmentID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, rescheduleAppointment.ErrServiceNotOffered):
			h.logger.Warn("PATCH /appointments/%d/slot - Service not offered", appointmentID)
			handlers.RespondNotFound(w, msgServiceNotOffered)

		case errors.Is(err, rescheduleAppointment.ErrNotReschedulable):
			h.logger.Warn("PATCH /appointments/%d/slot - Not reschedulable", appointmentID)
			handlers.RespondConflict(w, msgNotReschedulable)

		case errors.Is(err, rescheduleAppointment.ErrOutsideSchedule):
			h.logger.Warn("PATCH /appointments/%d/slot - Outside schedule: date=%s, time=%s",
				appointmentID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgOutsideSchedule)

		case errors.Is(err, rescheduleAppointment.ErrExceedsWindow):
			h.logger.Warn("PATCH /appointments/%d/slot - Exceeds window: date=%s, time=%s",
				appointmentID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgExceedsWindow)

		case errors.Is(err, rescheduleAppointment.ErrInvalidDate):
			h.logger.Warn("PATCH /appointments/%d/slot - Invalid booking date: date=%s", appointmentID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/%d/slot - Invalid input: %v", appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /appointments/%d/slot - Failed to reschedule: %v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/%d/slot - Appointment rescheduled to %s %s",
		appointmentID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
