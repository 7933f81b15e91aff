package repository

import (
	"context"
	"fmt"

	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BookingRepository handles persistence for bookings. Pure persistence; the
// seat checks live in the booking service.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create inserts a new booking record.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	var couponCode any
	if b.CouponCode != "" {
		couponCode = b.CouponCode
	}
	_, err := queryTarget(ctx, r.pool).Exec(ctx,
		`INSERT INTO bookings (id, user_id, event_id, tickets, total_price, coupon_code, discount_percent, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.UserID, b.EventID, b.Tickets, b.TotalPrice.String(),
		couponCode, b.DiscountPercent, b.Status, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func scanBooking(rows pgx.Rows, b *model.Booking, dest ...any) error {
	var (
		total  string
		coupon *string
	)
	args := append([]any{
		&b.ID, &b.UserID, &b.EventID, &b.Tickets, &total,
		&coupon, &b.DiscountPercent, &b.Status, &b.CreatedAt,
	}, dest...)
	if err := rows.Scan(args...); err != nil {
		return err
	}
	var err error
	b.TotalPrice, err = decimal.NewFromString(total)
	if err != nil {
		return fmt.Errorf("parse total price: %w", err)
	}
	if coupon != nil {
		b.CouponCode = *coupon
	}
	return nil
}

const bookingColumns = `b.id, b.user_id, b.event_id, b.tickets, b.total_price::text, b.coupon_code, b.discount_percent, b.status, b.created_at`

// FindByUser returns all bookings for a user, newest first, enriched with
// the referenced event's display fields.
func (r *BookingRepository) FindByUser(ctx context.Context, userID string) ([]model.UserBooking, error) {
	rows, err := queryTarget(ctx, r.pool).Query(ctx,
		`SELECT `+bookingColumns+`, e.title, e.date, e.location, e.unit_price::text
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.UserBooking
	for rows.Next() {
		var (
			ub    model.UserBooking
			price string
		)
		if err := scanBooking(rows, &ub.Booking,
			&ub.Event.Title, &ub.Event.Date, &ub.Event.Location, &price); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if ub.Event.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse event price: %w", err)
		}
		bookings = append(bookings, ub)
	}
	return bookings, rows.Err()
}

// FindAll returns every booking, newest first, enriched with user and event
// summaries. Administrative use only.
func (r *BookingRepository) FindAll(ctx context.Context) ([]model.AdminBooking, error) {
	rows, err := queryTarget(ctx, r.pool).Query(ctx,
		`SELECT `+bookingColumns+`, u.name, u.email, e.title, e.date, e.location, e.unit_price::text
		 FROM bookings b
		 JOIN users u ON u.id = b.user_id
		 JOIN events e ON e.id = b.event_id
		 ORDER BY b.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.AdminBooking
	for rows.Next() {
		var (
			ab    model.AdminBooking
			price string
		)
		if err := scanBooking(rows, &ab.Booking,
			&ab.User.Name, &ab.User.Email,
			&ab.Event.Title, &ab.Event.Date, &ab.Event.Location, &price); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if ab.Event.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse event price: %w", err)
		}
		bookings = append(bookings, ab)
	}
	return bookings, rows.Err()
}
