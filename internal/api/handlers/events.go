// Package handlers contains the HTTP handlers for the events API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventbase/server/internal/api/problem"
	"github.com/eventbase/server/internal/domain/events"
	"github.com/eventbase/server/internal/metrics"
)

// EventsHandler serves the /api/v1/events endpoints.
type EventsHandler struct {
	service *events.Service
	env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{service: service, env: env}
}

// eventResponse is the wire representation of a single event.
type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Organizer   string    `json:"organizer"`
	Tags        []string  `json:"tags"`
	Capacity    int       `json:"capacity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listResponse struct {
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Events []eventResponse `json:"events"`
}

func toEventResponse(e *events.Event) eventResponse {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Organizer:   e.Organizer,
		Tags:        tags,
		Capacity:    e.Capacity,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// Create handles POST /api/v1/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.CreateInput
	if err := decodeJSON(w, r, &input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid Request Body", err, h.env)
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.EventsCreatedTotal.Inc()
	writeJSON(w, r, http.StatusCreated, toEventResponse(created))
}

// List handles GET /api/v1/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := events.ParseListParams(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.List(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := listResponse{
		Total:  result.Total,
		Page:   params.Page,
		Limit:  params.Limit,
		Events: make([]eventResponse, 0, len(result.Events)),
	}
	for i := range result.Events {
		resp.Events = append(resp.Events, toEventResponse(&result.Events[i]))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// Get handles GET /api/v1/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(event))
}

// Update handles PATCH /api/v1/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input events.UpdateInput
	if err := decodeJSON(w, r, &input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid Request Body", err, h.env)
		return
	}

	updated, err := h.service.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(updated))
}

// Delete handles DELETE /api/v1/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.EventsDeletedTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps domain errors onto problem responses.
func (h *EventsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr events.ValidationError
	var filterErr events.FilterError

	switch {
	case errors.Is(err, events.ErrInvalidID):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid Event ID", err, h.env,
			problem.WithDetail("event id must be a 24-character hex string"))
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Event Not Found", err, h.env,
			problem.WithDetail("event does not exist or is no longer active"))
	case errors.Is(err, events.ErrConflict):
		metrics.EventConflictsTotal.Inc()
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict,
			"Duplicate Event", err, h.env,
			problem.WithDetail("an active event with the same title and date already exists"))
	case errors.As(err, &validationErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Validation Failed", err, h.env,
			problem.WithErrors(map[string]interface{}{validationErr.Field: validationErr.Message}))
	case errors.As(err, &filterErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid Query Parameter", err, h.env,
			problem.WithErrors(map[string]interface{}{filterErr.Field: filterErr.Message}))
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError,
			"Internal Server Error", err, h.env)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
