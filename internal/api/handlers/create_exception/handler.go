package create_exception

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/duvan51/agenda-booking-engine/internal/api/handlers"
	exceptionsService "github.com/duvan51/agenda-booking-engine/internal/service/exceptions"
)

const (
	msgInvalidAgendaID    = "некорректный идентификатор агенды"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные данные исключения"
	msgAgendaNotFound     = "агенда не найдена"
	msgServiceNotOffered  = "услуга не подключена к агенде"
)

type Handler struct {
	service ExceptionsService
	logger  Logger
}

func NewHandler(service ExceptionsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/agendas/{agendaId}/exceptions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	agendaID, err := strconv.ParseInt(vars["agendaId"], 10, 64)
	if err != nil || agendaID <= 0 {
		h.logger.Warn("POST /agendas/{id}/exceptions - Invalid agenda ID: %s", vars["agendaId"])
		handlers.RespondBadRequest(w, msgInvalidAgendaID)
		return
	}

	var req CreateExceptionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /agendas/%d/exceptions - Invalid request body: %v", agendaID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(agendaID)
	if err != nil {
		h.logger.Warn("POST /agendas/%d/exceptions - Failed to parse request: %v", agendaID, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.Create(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, exceptionsService.ErrAgendaNotFound):
			h.logger.Warn("POST /agendas/%d/exceptions - Agenda not found", agendaID)
			handlers.RespondNotFound(w, msgAgendaNotFound)

		case errors.Is(err, exceptionsService.ErrServiceNotOffered):
			h.logger.Warn("POST /agendas/%d/exceptions - Service not offered", agendaID)
			handlers.RespondNotFound(w, msgServiceNotOffered)

		case errors.Is(err, exceptionsService.ErrInvalidInput):
			h.logger.Warn("POST /agendas/%d/exceptions - Invalid input: %v", agendaID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /agendas/%d/exceptions - Failed to create exception: %v", agendaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /agendas/%d/exceptions - Exception created: exception_id=%d", agendaID, result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
