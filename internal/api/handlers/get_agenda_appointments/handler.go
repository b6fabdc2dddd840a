package get_agenda_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/duvan51/agenda-booking-engine/internal/api/handlers"
	"github.com/duvan51/agenda-booking-engine/internal/domain"
	appointmentsService "github.com/duvan51/agenda-booking-engine/internal/service/appointments"
	"github.com/duvan51/agenda-booking-engine/internal/service/appointments/models"
)

const (
	msgInvalidAgendaID  = "некорректный идентификатор агенды"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidServiceID = "некорректный идентификатор услуги"
	msgInvalidInput     = "некорректные параметры запроса"
	msgAgendaNotFound   = "агенда не найдена"
)

type Handler struct {
	service AppointmentsService
	logger  Logger
}

func NewHandler(service AppointmentsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/agendas/{agendaId}/appointments
//
// Query параметры:
//   - date=YYYY-MM-DD — записи конкретного дня
//   - serviceId — только записи услуги
//   - status — pending | confirmed | cancelled
//   - includeCancelled=true — включить отменённые записи
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	agendaID, err := strconv.ParseInt(vars["agendaId"], 10, 64)
	if err != nil || agendaID <= 0 {
		h.logger.Warn("GET /agendas/{id}/appointments - Invalid agenda ID: %s", vars["agendaId"])
		handlers.RespondBadRequest(w, msgInvalidAgendaID)
		return
	}

	req := &models.GetAgendaAppointmentsRequest{AgendaID: agendaID}
	query := r.URL.Query()

	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /agendas/%d/appointments - Invalid date: %s", agendaID, raw)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = &date
	}

	if raw := query.Get("serviceId"); raw != "" {
		serviceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || serviceID <= 0 {
			h.logger.Warn("GET /agendas/%d/appointments - Invalid service ID: %s", agendaID, raw)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
		req.ServiceID = &serviceID
	}

	if raw := query.Get("status"); raw != "" {
		req.Status = &raw
	}

	req.IncludeCancelled = query.Get("includeCancelled") == "true"

	result, err := h.service.GetAgendaAppointments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAgendaNotFound):
			h.logger.Warn("GET /agendas/%d/appointments - Agenda not found", agendaID)
			handlers.RespondNotFound(w, msgAgendaNotFound)

		case errors.Is(err, appointmentsService.ErrInvalidInput):
			h.logger.Warn("GET /agendas/%d/appointments - Invalid input: %v", agendaID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /agendas/%d/appointments - Failed to list appointments: %v", agendaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
