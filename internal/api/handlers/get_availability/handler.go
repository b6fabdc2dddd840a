package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/duvan51/agenda-booking-engine/internal/api/handlers"
	"github.com/duvan51/agenda-booking-engine/internal/domain"
	getAvailability "github.com/duvan51/agenda-booking-engine/internal/usecase/get_availability"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

const (
	msgInvalidAgendaID   = "некорректный идентификатор агенды"
	msgMissingDate       = "параметр date обязателен"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidServiceID  = "некорректный идентификатор услуги"
	msgInvalidTime       = "некорректный формат времени, ожидается HH:MM"
	msgInvalidInput      = "некорректные параметры запроса"
	msgAgendaNotFound    = "агенда не найдена"
	msgServiceNotFound   = "услуга не найдена"
	msgServiceNotOffered = "услуга не подключена к агенде"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/agendas/{agendaId}/availability
//
// Query параметры:
//   - date=YYYY-MM-DD — обязательная дата запроса
//   - serviceId — сузить до расписания конкретной услуги
//   - time=HH:MM — дополнить ответ решением по конкретному моменту
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	agendaID, err := strconv.ParseInt(vars["agendaId"], 10, 64)
	if err != nil || agendaID <= 0 {
		h.logger.Warn("GET /agendas/{id}/availability - Invalid agenda ID: %s", vars["agendaId"])
		handlers.RespondBadRequest(w, msgInvalidAgendaID)
		return
	}

	query := r.URL.Query()

	rawDate := query.Get("date")
	if rawDate == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := time.Parse(domain.DateFormat, rawDate)
	if err != nil {
		h.logger.Warn("GET /agendas/%d/availability - Invalid date: %s", agendaID, rawDate)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	req := &getAvailability.Request{AgendaID: agendaID, Date: date}

	if raw := query.Get("serviceId"); raw != "" {
		serviceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || serviceID <= 0 {
			h.logger.Warn("GET /agendas/%d/availability - Invalid service ID: %s", agendaID, raw)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
		req.ServiceID = &serviceID
	}

	if raw := query.Get("time"); raw != "" {
		t, err := types.NewTimeStringFromString(raw)
		if err != nil {
			h.logger.Warn("GET /agendas/%d/availability - Invalid time: %s", agendaID, raw)
			handlers.RespondBadRequest(w, msgInvalidTime)
			return
		}
		req.Time = &t
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrAgendaNotFound):
			h.logger.Warn("GET /agendas/%d/availability - Agenda not found", agendaID)
			handlers.RespondNotFound(w, msgAgendaNotFound)

		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /agendas/%d/availability - Service not found", agendaID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrServiceNotOffered):
			h.logger.Warn("GET /agendas/%d/availability - Service not offered", agendaID)
			handlers.RespondNotFound(w, msgServiceNotOffered)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /agendas/%d/availability - Invalid input: %v", agendaID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /agendas/%d/availability - Failed to get availability: %v", agendaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
