package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventhive/ticketing-api/internal/clock"
	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventCatalog is the event persistence surface for event management.
type EventCatalog interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
	AddCoupon(ctx context.Context, eventID string, c model.Coupon) error
	AddPromoter(ctx context.Context, eventID, userID string) error
}

// EventService covers event creation and the promoter-facing operations:
// price changes, coupon generation, and promoter assignment. Ownership
// rules mirror the aggregate: promoters may touch pricing and coupons only
// on events they are assigned to, and only the organizer assigns promoters.
type EventService struct {
	events EventCatalog
	clock  clock.Clock
}

// NewEventService constructs an EventService.
func NewEventService(events EventCatalog, clk clock.Clock) *EventService {
	return &EventService{events: events, clock: clk}
}

// CreateEvent validates the request and persists a new event owned by the
// calling organizer. Available seats start at capacity.
func (s *EventService) CreateEvent(ctx context.Context, organizerID string, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	switch {
	case req.Title == "":
		return nil, validationf("title is required")
	case strings.TrimSpace(req.Description) == "":
		return nil, validationf("description is required")
	case req.Date.IsZero():
		return nil, validationf("date is required")
	case req.Location == "":
		return nil, validationf("location is required")
	case req.UnitPrice.IsNegative():
		return nil, validationf("price cannot be negative")
	case req.Capacity < 1:
		return nil, validationf("capacity must be a positive integer")
	case req.Capacity > 100_000:
		return nil, validationf("capacity cannot exceed 100,000")
	}

	event := &model.Event{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    req.Description,
		Date:           req.Date,
		Location:       req.Location,
		UnitPrice:      req.UnitPrice,
		Capacity:       req.Capacity,
		AvailableSeats: req.Capacity,
		OrganizerID:    organizerID,
		PromoterIDs:    []string{},
		Coupons:        []model.Coupon{},
		CreatedAt:      s.clock.Now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// ListEvents returns all events.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, validationf("event id is required")
	}
	return s.events.GetByID(ctx, id)
}

// UpdatePrice sets a new unit price. Only a promoter assigned to the event
// may do this.
func (s *EventService) UpdatePrice(ctx context.Context, callerID, eventID string, price decimal.Decimal) (*model.Event, error) {
	if price.IsNegative() {
		return nil, validationf("price cannot be negative")
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.HasPromoter(callerID) {
		return nil, ErrNotEventPromoter
	}
	if err := s.events.UpdatePrice(ctx, eventID, price); err != nil {
		return nil, fmt.Errorf("update price: %w", err)
	}
	event.UnitPrice = price
	return event, nil
}

// AddCoupon appends a coupon to the event's list. Only a promoter assigned
// to the event may do this. The discount range is enforced here, at store
// time, so evaluation can trust persisted values.
func (s *EventService) AddCoupon(ctx context.Context, callerID, eventID string, req model.AddCouponRequest) (*model.Event, error) {
	req.Code = strings.TrimSpace(req.Code)
	switch {
	case req.Code == "":
		return nil, validationf("code is required")
	case req.DiscountPercent < 0 || req.DiscountPercent > 100:
		return nil, validationf("discount must be between 0 and 100")
	case req.ValidUntil.IsZero():
		return nil, validationf("validUntil is required")
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.HasPromoter(callerID) {
		return nil, ErrNotEventPromoter
	}

	coupon := model.Coupon{
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
		ValidUntil:      req.ValidUntil,
		CreatedBy:       callerID,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.events.AddCoupon(ctx, eventID, coupon); err != nil {
		return nil, fmt.Errorf("add coupon: %w", err)
	}
	event.Coupons = append(event.Coupons, coupon)
	return event, nil
}

// AssignPromoter adds a promoter to the event. Only the event's organizer
// may do this; assigning the same promoter twice is a no-op.
func (s *EventService) AssignPromoter(ctx context.Context, callerID, eventID, promoterID string) (*model.Event, error) {
	if promoterID == "" {
		return nil, validationf("promoterId is required")
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, ErrNotEventOrganizer
	}
	if event.HasPromoter(promoterID) {
		return event, nil
	}
	if err := s.events.AddPromoter(ctx, eventID, promoterID); err != nil {
		return nil, fmt.Errorf("assign promoter: %w", err)
	}
	event.PromoterIDs = append(event.PromoterIDs, promoterID)
	return event, nil
}

// IsForbidden reports whether err is one of the ownership failures.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotEventPromoter) || errors.Is(err, ErrNotEventOrganizer)
}
