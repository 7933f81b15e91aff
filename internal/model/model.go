// Package model defines the core domain types for the ticketing backend.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles carried by the resolved identity.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
	RolePromoter  = "promoter"
)

// Booking status values. Bookings are created pending; the transitions to
// confirmed or cancelled are an extension point with no trigger yet.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Identity is the resolved {userId, role} pair the API consumes. How the
// caller authenticated is the identity provider's concern.
type Identity struct {
	UserID string
	Role   string
}

// Coupon is a time-bounded discount code scoped to a single event.
// Coupons are only ever appended to an event, never changed or removed.
type Coupon struct {
	Code            string    `json:"code"`
	DiscountPercent int       `json:"discount"`
	ValidUntil      time.Time `json:"validUntil"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Event represents a ticketed occasion with finite seat capacity.
type Event struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Date           time.Time       `json:"date"`
	Location       string          `json:"location"`
	UnitPrice      decimal.Decimal `json:"price"`
	Capacity       int             `json:"capacity"`
	AvailableSeats int             `json:"availableSeats"`
	OrganizerID    string          `json:"organizer"`
	PromoterIDs    []string        `json:"promoters"`
	Coupons        []Coupon        `json:"couponCodes"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// HasPromoter reports whether userID is one of the event's promoters.
func (e *Event) HasPromoter(userID string) bool {
	for _, id := range e.PromoterIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Booking is a user's reservation of one or more seats against an event.
// The submitted coupon code is recorded even when it produced no discount.
type Booking struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user"`
	EventID         string          `json:"event"`
	Tickets         int             `json:"tickets"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	CouponCode      string          `json:"couponCode,omitempty"`
	DiscountPercent int             `json:"discount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// EventSummary is the slice of event fields attached to booking listings.
type EventSummary struct {
	Title     string          `json:"title"`
	Date      time.Time       `json:"date"`
	Location  string          `json:"location"`
	UnitPrice decimal.Decimal `json:"price"`
}

// UserSummary identifies the booking owner in administrative listings.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserBooking is a booking enriched with its event for the owner's listing.
type UserBooking struct {
	Booking
	Event EventSummary `json:"eventDetails"`
}

// AdminBooking is a booking enriched with both user and event summaries.
type AdminBooking struct {
	Booking
	User  UserSummary  `json:"userDetails"`
	Event EventSummary `json:"eventDetails"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Location    string          `json:"location"`
	UnitPrice   decimal.Decimal `json:"price"`
	Capacity    int             `json:"capacity"`
}

// UpdatePriceRequest is the payload for a promoter price change.
type UpdatePriceRequest struct {
	UnitPrice decimal.Decimal `json:"price"`
}

// AddCouponRequest is the payload for appending a coupon to an event.
type AddCouponRequest struct {
	Code            string    `json:"code"`
	DiscountPercent int       `json:"discount"`
	ValidUntil      time.Time `json:"validUntil"`
}

// AssignPromoterRequest is the payload for adding a promoter to an event.
type AssignPromoterRequest struct {
	PromoterID string `json:"promoterId"`
}

// CreateBookingRequest is the payload for booking tickets.
type CreateBookingRequest struct {
	EventID    string `json:"eventId"`
	Tickets    int    `json:"tickets"`
	CouponCode string `json:"couponCode,omitempty"`
}
