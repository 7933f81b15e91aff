// Package repository implements all database queries for the ticketing
// backend. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// EventRepository handles persistence for events, their promoter set, and
// their coupon list.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// WithTx runs fn inside a single database transaction.
func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const eventColumns = `id, title, description, date, location, unit_price::text, capacity, available_seats, organizer_id, created_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e     model.Event
		price string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location,
		&price, &e.Capacity, &e.AvailableSeats, &e.OrganizerID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.UnitPrice, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse unit price: %w", err)
	}
	return &e, nil
}

// Create inserts a new event. Available seats are initialized to capacity
// here, exactly once; after creation only the booking path may change them.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	e.AvailableSeats = e.Capacity
	_, err := queryTarget(ctx, r.pool).Exec(ctx,
		`INSERT INTO events (id, title, description, date, location, unit_price, capacity, available_seats, organizer_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.Title, e.Description, e.Date, e.Location, e.UnitPrice.String(),
		e.Capacity, e.AvailableSeats, e.OrganizerID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event with its promoters and coupons, or
// ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	q := queryTarget(ctx, r.pool)
	e, err := scanEvent(q.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := r.loadRelations(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetForUpdate locks the event row for the remainder of the surrounding
// transaction and returns the event with its coupon list. Concurrent
// bookings for the same event serialize here; other events are unaffected.
func (r *EventRepository) GetForUpdate(ctx context.Context, id string) (*model.Event, error) {
	q := queryTarget(ctx, r.pool)
	e, err := scanEvent(q.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	if err := r.loadRelations(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns all events ordered by creation time descending, each with
// promoters and coupons attached.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	q := queryTarget(ctx, r.pool)
	rows, err := q.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range events {
		if err := r.loadRelations(ctx, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// loadRelations fills in the promoter set and the ordered coupon list.
func (r *EventRepository) loadRelations(ctx context.Context, e *model.Event) error {
	q := queryTarget(ctx, r.pool)

	rows, err := q.Query(ctx,
		`SELECT user_id FROM event_promoters WHERE event_id = $1 ORDER BY user_id`, e.ID)
	if err != nil {
		return fmt.Errorf("list promoters: %w", err)
	}
	defer rows.Close()
	e.PromoterIDs = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan promoter: %w", err)
		}
		e.PromoterIDs = append(e.PromoterIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// seq preserves insertion order, which decides ties between duplicate
	// codes during evaluation.
	crows, err := q.Query(ctx,
		`SELECT code, discount_percent, valid_until, created_by, created_at
		 FROM coupons WHERE event_id = $1 ORDER BY seq`, e.ID)
	if err != nil {
		return fmt.Errorf("list coupons: %w", err)
	}
	defer crows.Close()
	e.Coupons = []model.Coupon{}
	for crows.Next() {
		var c model.Coupon
		if err := crows.Scan(&c.Code, &c.DiscountPercent, &c.ValidUntil, &c.CreatedBy, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan coupon: %w", err)
		}
		e.Coupons = append(e.Coupons, c)
	}
	return crows.Err()
}

// UpdatePrice sets a new unit price for the event.
func (r *EventRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	tag, err := queryTarget(ctx, r.pool).Exec(ctx,
		`UPDATE events SET unit_price = $1 WHERE id = $2`, price.String(), id)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddCoupon appends a coupon to the event's list.
func (r *EventRepository) AddCoupon(ctx context.Context, eventID string, c model.Coupon) error {
	_, err := queryTarget(ctx, r.pool).Exec(ctx,
		`INSERT INTO coupons (event_id, code, discount_percent, valid_until, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		eventID, c.Code, c.DiscountPercent, c.ValidUntil, c.CreatedBy, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// AddPromoter adds a promoter to the event's set. Adding the same promoter
// twice is a no-op.
func (r *EventRepository) AddPromoter(ctx context.Context, eventID, userID string) error {
	_, err := queryTarget(ctx, r.pool).Exec(ctx,
		`INSERT INTO event_promoters (event_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("insert promoter: %w", err)
	}
	return nil
}

// DecrementSeats atomically takes n seats from the event, refusing to go
// below zero. Zero rows affected means the inventory check failed.
func (r *EventRepository) DecrementSeats(ctx context.Context, id string, n int) error {
	tag, err := queryTarget(ctx, r.pool).Exec(ctx,
		`UPDATE events
		 SET available_seats = available_seats - $1
		 WHERE id = $2 AND available_seats >= $1`,
		n, id,
	)
	if err != nil {
		return fmt.Errorf("decrement seats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientSeats
	}
	return nil
}
