package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/eventhive/ticketing-api/internal/auth"
	"github.com/eventhive/ticketing-api/internal/clock"
	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/eventhive/ticketing-api/internal/repository"
	"github.com/eventhive/ticketing-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// memStore is a minimal in-memory EventStore + BookingStore for exercising
// the full handler → service path over httptest.
type memStore struct {
	mu       sync.Mutex
	events   map[string]*model.Event
	bookings []model.Booking
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

func (s *memStore) GetForUpdate(_ context.Context, id string) (*model.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) DecrementSeats(_ context.Context, id string, n int) error {
	e, ok := s.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.AvailableSeats < n {
		return repository.ErrInsufficientSeats
	}
	e.AvailableSeats -= n
	return nil
}

func (s *memStore) Create(_ context.Context, b *model.Booking) error {
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *memStore) FindByUser(_ context.Context, userID string) ([]model.UserBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserBooking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, model.UserBooking{Booking: b})
		}
	}
	return out, nil
}

func (s *memStore) FindAll(_ context.Context) ([]model.AdminBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AdminBooking
	for _, b := range s.bookings {
		out = append(out, model.AdminBooking{Booking: b})
	}
	return out, nil
}

type noopPublisher struct{}

func (noopPublisher) BookingCreated(context.Context, model.Booking) {}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore, *auth.JWTProvider) {
	t.Helper()

	store := &memStore{events: map[string]*model.Event{
		"ev-1": {
			ID:             "ev-1",
			Title:          "Go Conference",
			UnitPrice:      decimal.NewFromInt(100),
			Capacity:       10,
			AvailableSeats: 10,
			Coupons: []model.Coupon{
				{Code: "SAVE10", DiscountPercent: 10, ValidUntil: testNow.Add(24 * time.Hour)},
			},
		},
	}}

	svc := service.NewBookingService(store, store, clock.NewFixed(testNow), noopPublisher{})
	h := NewBookingHandler(svc)
	provider := auth.NewJWTProvider("test-secret")

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(provider))
			r.Get("/bookings", h.List)
			r.Post("/bookings", h.Create)
			r.Get("/bookings/all", h.ListAll)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store, provider
}

func bearerToken(t *testing.T, p *auth.JWTProvider, userID, role string) string {
	t.Helper()
	token, err := p.Sign(model.Identity{UserID: userID, Role: role}, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, method, url, authz string, body any) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func TestBookingHandler_Create(t *testing.T) {
	srv, store, provider := newTestServer(t)
	authz := bearerToken(t, provider, "user-1", model.RoleUser)

	t.Run("requires authentication", func(t *testing.T) {
		resp, env := doRequest(t, http.MethodPost, srv.URL+"/api/bookings", "",
			model.CreateBookingRequest{EventID: "ev-1", Tickets: 1})
		if resp.StatusCode != http.StatusUnauthorized || env.Success {
			t.Fatalf("expected 401, got %d (%+v)", resp.StatusCode, env)
		}
	})

	t.Run("books tickets with a coupon", func(t *testing.T) {
		resp, env := doRequest(t, http.MethodPost, srv.URL+"/api/bookings", authz,
			model.CreateBookingRequest{EventID: "ev-1", Tickets: 2, CouponCode: "SAVE10"})
		if resp.StatusCode != http.StatusCreated || !env.Success {
			t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, env.Message)
		}
		var b model.Booking
		if err := json.Unmarshal(env.Data, &b); err != nil {
			t.Fatalf("decode booking: %v", err)
		}
		if !b.TotalPrice.Equal(decimal.NewFromInt(180)) {
			t.Fatalf("expected total 180, got %s", b.TotalPrice)
		}
		if b.Status != model.BookingPending {
			t.Fatalf("expected pending booking, got %s", b.Status)
		}
		if store.events["ev-1"].AvailableSeats != 8 {
			t.Fatalf("expected 8 seats left, got %d", store.events["ev-1"].AvailableSeats)
		}
	})

	t.Run("unknown event yields 404", func(t *testing.T) {
		resp, env := doRequest(t, http.MethodPost, srv.URL+"/api/bookings", authz,
			model.CreateBookingRequest{EventID: "ev-missing", Tickets: 1})
		if resp.StatusCode != http.StatusNotFound || env.Success {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("insufficient seats yields 400", func(t *testing.T) {
		resp, env := doRequest(t, http.MethodPost, srv.URL+"/api/bookings", authz,
			model.CreateBookingRequest{EventID: "ev-1", Tickets: 100})
		if resp.StatusCode != http.StatusBadRequest || env.Success {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		if env.Message != "not enough seats available" {
			t.Fatalf("unexpected message %q", env.Message)
		}
	})

	t.Run("invalid ticket count yields 400", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/bookings", authz,
			model.CreateBookingRequest{EventID: "ev-1", Tickets: 0})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestBookingHandler_List(t *testing.T) {
	srv, _, provider := newTestServer(t)
	authz := bearerToken(t, provider, "user-1", model.RoleUser)

	resp, env := doRequest(t, http.MethodGet, srv.URL+"/api/bookings", authz, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.Count == nil || *env.Count != 0 {
		t.Fatalf("expected count 0, got %v", env.Count)
	}

	doRequest(t, http.MethodPost, srv.URL+"/api/bookings", authz,
		model.CreateBookingRequest{EventID: "ev-1", Tickets: 3})

	_, env = doRequest(t, http.MethodGet, srv.URL+"/api/bookings", authz, nil)
	if env.Count == nil || *env.Count != 1 {
		t.Fatalf("expected count 1, got %v", env.Count)
	}

	// Another user sees none of them.
	other := bearerToken(t, provider, "user-2", model.RoleUser)
	_, env = doRequest(t, http.MethodGet, srv.URL+"/api/bookings", other, nil)
	if env.Count == nil || *env.Count != 0 {
		t.Fatalf("expected count 0 for other user, got %v", env.Count)
	}
}

func TestBookingHandler_ListAll(t *testing.T) {
	srv, _, provider := newTestServer(t)

	t.Run("rejects non-admins", func(t *testing.T) {
		authz := bearerToken(t, provider, "user-1", model.RoleUser)
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/bookings/all", authz, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("admins see every booking", func(t *testing.T) {
		user := bearerToken(t, provider, "user-1", model.RoleUser)
		doRequest(t, http.MethodPost, srv.URL+"/api/bookings", user,
			model.CreateBookingRequest{EventID: "ev-1", Tickets: 1})

		admin := bearerToken(t, provider, "admin-1", model.RoleAdmin)
		resp, env := doRequest(t, http.MethodGet, srv.URL+"/api/bookings/all", admin, nil)
		if resp.StatusCode != http.StatusOK || !env.Success {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if env.Count == nil || *env.Count != 1 {
			t.Fatalf("expected count 1, got %v", env.Count)
		}
	})
}
