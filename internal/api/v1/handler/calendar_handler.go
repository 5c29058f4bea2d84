package handler

import (
	"net/http"
	"time"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type CalendarHandler struct {
	calendarService service.CalendarService
	validate        *validator.Validate
	logger          zerolog.Logger
}

func NewCalendarHandler(calendarService service.CalendarService, v *validator.Validate, logger zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		validate:        v,
		logger:          logger.With().Str("handler", "CalendarHandler").Logger(),
	}
}

func (h *CalendarHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Get("/calendar/events", h.listEvents)
		r.Post("/calendar/events", h.createEvent)
		r.Patch("/calendar/events/{eventId}", h.updateEvent)
		r.Delete("/calendar/events/{eventId}", h.deleteEvent)
		r.Get("/activities", h.listActivity)
	})
}

// queryTime reads an optional RFC3339 query parameter.
func queryTime(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		http.Error(w, "Invalid query parameter: "+name+" must be RFC3339", http.StatusBadRequest)
		return nil, false
	}
	return &t, true
}

// listEvents godoc
// @Summary List calendar events in a window
// @Description Defaults to the current UTC month.
// @Tags calendar
// @Produce json
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {array} dto.EventResponseDTO
// @Failure 400 {string} string "Invalid query parameter"
// @Router /calendar/events [get]
func (h *CalendarHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	from, ok := queryTime(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryTime(w, r, "to")
	if !ok {
		return
	}
	events, err := h.calendarService.ListEvents(r.Context(), userID, from, to)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve events")
		return
	}
	out := make([]dto.EventResponseDTO, 0, len(events))
	for i := range events {
		out = append(out, toEventDTO(&events[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// createEvent godoc
// @Summary Create a calendar event
// @Tags calendar
// @Accept json
// @Produce json
// @Param body body dto.EventCreateDTO true "Event"
// @Success 201 {object} dto.EventResponseDTO
// @Failure 400 {string} string "ends_at must not be before starts_at"
// @Router /calendar/events [post]
func (h *CalendarHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.EventCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	e, err := h.calendarService.CreateEvent(r.Context(), userID, service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AllDay:      req.AllDay,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "create event")
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(e))
}

func (h *CalendarHandler) updateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId", "Event")
	if !ok {
		return
	}
	var req dto.EventUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	e, err := h.calendarService.UpdateEvent(r.Context(), userID, eventID, service.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AllDay:      req.AllDay,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "update event")
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(e))
}

func (h *CalendarHandler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId", "Event")
	if !ok {
		return
	}
	if err := h.calendarService.DeleteEvent(r.Context(), userID, eventID); err != nil {
		writeServiceError(w, h.logger, err, "delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listActivity godoc
// @Summary Daily activity counts
// @Description One entry per UTC day, oldest first, including days with no activity.
// @Tags calendar
// @Produce json
// @Param days query int false "Number of days (default 365, max 366)"
// @Success 200 {array} dto.ActivityDayDTO
// @Failure 400 {string} string "Invalid query parameter"
// @Router /activities [get]
func (h *CalendarHandler) listActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days, ok := queryInt(w, r, "days", service.DefaultActivityDays)
	if !ok {
		return
	}
	activity, err := h.calendarService.ActivityByDay(r.Context(), userID, days)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve activity")
		return
	}
	writeJSON(w, http.StatusOK, toActivityDTOs(activity))
}
