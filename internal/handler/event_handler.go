package handler

import (
	"net/http"

	"github.com/eventhive/ticketing-api/internal/auth"
	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/eventhive/ticketing-api/internal/service"
	"github.com/go-chi/chi/v5"
)

// EventHandler holds the HTTP handlers for the event management API.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ListEvents handles GET /api/events
// Public listing of all events with promoters and coupons attached.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeList(w, http.StatusOK, len(events), events)
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, event)
}

// CreateEvent handles POST /api/events
// Organizers only. The caller becomes the event's organizer.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, model.RoleOrganizer)
	if !ok {
		return
	}
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.CreateEvent(r.Context(), id.UserID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, event)
}

// UpdatePrice handles PUT /api/events/{id}/price
// Promoters only; the service additionally checks assignment to the event.
func (h *EventHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, model.RolePromoter)
	if !ok {
		return
	}
	var req model.UpdatePriceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.UpdatePrice(r.Context(), id.UserID, chi.URLParam(r, "id"), req.UnitPrice)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, event)
}

// AddCoupon handles POST /api/events/{id}/coupon
// Promoters only; the service additionally checks assignment to the event.
func (h *EventHandler) AddCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, model.RolePromoter)
	if !ok {
		return
	}
	var req model.AddCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.AddCoupon(r.Context(), id.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, event)
}

// AssignPromoter handles POST /api/events/{id}/promoters
// Organizers only; the service checks the caller owns the event.
func (h *EventHandler) AssignPromoter(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, model.RoleOrganizer)
	if !ok {
		return
	}
	var req model.AssignPromoterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.AssignPromoter(r.Context(), id.UserID, chi.URLParam(r, "id"), req.PromoterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, event)
}

// requireRole pulls the resolved identity from the context and checks its
// role. Writes 401/403 itself when the check fails.
func requireRole(w http.ResponseWriter, r *http.Request, role string) (model.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return model.Identity{}, false
	}
	if id.Role != role {
		writeError(w, http.StatusForbidden, "insufficient role")
		return model.Identity{}, false
	}
	return id, true
}
