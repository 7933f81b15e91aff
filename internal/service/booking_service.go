// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eventhive/ticketing-api/internal/clock"
	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/eventhive/ticketing-api/internal/pricing"
	"github.com/eventhive/ticketing-api/internal/repository"
	"github.com/google/uuid"
)

// EventStore is the event persistence surface the booking path needs.
type EventStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetForUpdate(ctx context.Context, id string) (*model.Event, error)
	DecrementSeats(ctx context.Context, id string, n int) error
}

// BookingStore persists booking records.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	FindByUser(ctx context.Context, userID string) ([]model.UserBooking, error)
	FindAll(ctx context.Context) ([]model.AdminBooking, error)
}

// Publisher receives booking-created records after the transaction commits.
type Publisher interface {
	BookingCreated(ctx context.Context, b model.Booking)
}

// BookingService orchestrates the seat check, coupon evaluation, price
// computation, booking creation, and seat decrement as one atomic unit.
type BookingService struct {
	events   EventStore
	bookings BookingStore
	clock    clock.Clock
	pub      Publisher
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(events EventStore, bookings BookingStore, clk clock.Clock, pub Publisher) *BookingService {
	return &BookingService{events: events, bookings: bookings, clock: clk, pub: pub}
}

// Create books tickets against an event's available seats.
//
// The whole sequence runs inside one transaction with the event row locked,
// so concurrent bookings for the same event serialize and the seat counter
// can never be oversold: the booking record and the seat decrement land
// together or not at all. The submitted coupon code is recorded on the
// booking even when it matched nothing; a mismatch only means zero discount.
func (s *BookingService) Create(ctx context.Context, userID string, req model.CreateBookingRequest) (*model.Booking, error) {
	if req.EventID == "" {
		return nil, validationf("eventId is required")
	}
	if req.Tickets < 1 {
		return nil, validationf("tickets must be at least 1")
	}

	var booking *model.Booking
	err := s.events.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.events.GetForUpdate(txCtx, req.EventID)
		if err != nil {
			return err
		}
		if req.Tickets > event.AvailableSeats {
			return repository.ErrInsufficientSeats
		}

		discount := 0
		if req.CouponCode != "" {
			if m, ok := pricing.NewCouponIndex(event.Coupons).Evaluate(req.CouponCode, s.clock.Now()); ok {
				discount = m.DiscountPercent
			}
		}

		b := &model.Booking{
			ID:              uuid.New().String(),
			UserID:          userID,
			EventID:         event.ID,
			Tickets:         req.Tickets,
			TotalPrice:      pricing.Total(event.UnitPrice, req.Tickets, discount),
			CouponCode:      req.CouponCode,
			DiscountPercent: discount,
			Status:          model.BookingPending,
			CreatedAt:       s.clock.Now(),
		}
		if err := s.bookings.Create(txCtx, b); err != nil {
			return err
		}
		if err := s.events.DecrementSeats(txCtx, event.ID, req.Tickets); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInsufficientSeats) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.pub.BookingCreated(ctx, *booking)
	slog.Info("booking created",
		"booking_id", booking.ID,
		"event_id", booking.EventID,
		"tickets", booking.Tickets,
		"discount", booking.DiscountPercent,
	)
	return booking, nil
}

// ListForUser returns the user's bookings enriched with event details.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]model.UserBooking, error) {
	return s.bookings.FindByUser(ctx, userID)
}

// ListAll returns every booking with user and event summaries. The caller's
// admin role is checked at the HTTP boundary.
func (s *BookingService) ListAll(ctx context.Context) ([]model.AdminBooking, error) {
	return s.bookings.FindAll(ctx)
}
