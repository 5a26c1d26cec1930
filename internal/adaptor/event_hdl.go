package adaptor

import (
	"encoding/json"
	"net/http"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EventHandler struct {
	service usecase.EventService
	log     *zap.Logger
}

func NewEventHandler(service usecase.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log.With(zap.String("handler", "event")),
	}
}

func callerRole(r *http.Request) entity.UserRole {
	role, _ := utils.GetRoleFromContext(r.Context())
	return entity.UserRole(role)
}

// CreateEvent handles POST /api/events (organizer or admin)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), userID, &req)
	if err != nil {
		respondError(w, h.log, err, "create event")
		return
	}

	utils.ResponseCreated(w, "success", event)
}

// GetEvents handles GET /api/events (public), filters: ?category= & ?search=
// with an optional ?limit= cap on the result size.
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	events, err := h.service.GetEvents(r.Context(), query.Get("category"), query.Get("search"))
	if err != nil {
		respondError(w, h.log, err, "get events")
		return
	}

	limit := utils.ParseInt(query.Get("limit"), 1000)
	if len(events) > limit {
		events = events[:limit]
	}

	utils.ResponseSuccess(w, "success", events)
}

// GetEvent handles GET /api/events/{id} (public)
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		utils.ResponseBadRequest(w, "Event ID is required", nil)
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		respondError(w, h.log, err, "get event")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}

// UpdateEvent handles PUT /api/events/{id} (owner or admin)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		utils.ResponseBadRequest(w, "Event ID is required", nil)
		return
	}

	var req request.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), userID, callerRole(r), eventID, &req)
	if err != nil {
		respondError(w, h.log, err, "update event")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}

// CancelEvent handles DELETE /api/events/{id} (owner or admin). Events are
// status-transitioned to cancelled, never removed.
func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		utils.ResponseBadRequest(w, "Event ID is required", nil)
		return
	}

	if err := h.service.CancelEvent(r.Context(), userID, callerRole(r), eventID); err != nil {
		respondError(w, h.log, err, "cancel event")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// GetMyEvents handles GET /api/events/my-events (protected)
func (h *EventHandler) GetMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	events, err := h.service.GetMyEvents(r.Context(), userID)
	if err != nil {
		respondError(w, h.log, err, "get my events")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// CreateTier handles POST /api/events/{id}/ticket-tiers (owner or admin)
func (h *EventHandler) CreateTier(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		utils.ResponseBadRequest(w, "Event ID is required", nil)
		return
	}

	var req request.CreateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	tier, err := h.service.CreateTier(r.Context(), userID, callerRole(r), eventID, &req)
	if err != nil {
		respondError(w, h.log, err, "create ticket tier")
		return
	}

	utils.ResponseCreated(w, "success", tier)
}

// GetTiers handles GET /api/events/{id}/ticket-tiers (public)
func (h *EventHandler) GetTiers(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		utils.ResponseBadRequest(w, "Event ID is required", nil)
		return
	}

	tiers, err := h.service.GetTiers(r.Context(), eventID)
	if err != nil {
		respondError(w, h.log, err, "get ticket tiers")
		return
	}

	utils.ResponseSuccess(w, "success", tiers)
}
