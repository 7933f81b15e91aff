package handler

import (
	"net/http"

	"github.com/eventhive/ticketing-api/internal/auth"
	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/eventhive/ticketing-api/internal/service"
)

// BookingHandler holds the HTTP handlers for the booking API.
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// List handles GET /api/bookings
// Returns the caller's bookings enriched with event details.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	bookings, err := h.svc.ListForUser(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []model.UserBooking{}
	}
	writeList(w, http.StatusOK, len(bookings), bookings)
}

// Create handles POST /api/bookings
// Books tickets for the caller: 201 on success, 404 when the event does not
// exist, 400 on validation failure or insufficient seats.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	booking, err := h.svc.Create(r.Context(), id.UserID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, booking)
}

// ListAll handles GET /api/bookings/all
// Admin-only listing of every booking with user and event summaries.
func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}
	bookings, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []model.AdminBooking{}
	}
	writeList(w, http.StatusOK, len(bookings), bookings)
}
