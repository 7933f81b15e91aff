package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

// memCatalog backs the event handlers in tests.
type memCatalog struct {
	events map[string]*model.Event
}

func (c *memCatalog) Create(_ context.Context, e *model.Event) error {
	cp := *e
	c.events[e.ID] = &cp
	return nil
}

func (c *memCatalog) GetByID(_ context.Context, id string) (*model.Event, error) {
	e, ok := c.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (c *memCatalog) List(_ context.Context) ([]model.Event, error) {
	var out []model.Event
	for _, e := range c.events {
		out = append(out, *e)
	}
	return out, nil
}

func (c *memCatalog) UpdatePrice(_ context.Context, id string, price decimal.Decimal) error {
	c.events[id].UnitPrice = price
	return nil
}

func (c *memCatalog) AddCoupon(_ context.Context, eventID string, coupon model.Coupon) error {
	e := c.events[eventID]
	e.Coupons = append(e.Coupons, coupon)
	return nil
}

func (c *memCatalog) AddPromoter(_ context.Context, eventID, userID string) error {
	e := c.events[eventID]
	e.PromoterIDs = append(e.PromoterIDs, userID)
	return nil
}

func newEventTestServer(t *testing.T) (*httptest.Server, *memCatalog, *auth.JWTProvider) {
	t.Helper()

	catalog := &memCatalog{events: map[string]*model.Event{
		"ev-1": {
			ID:          "ev-1",
			Title:       "Go Conference",
			OrganizerID: "org-1",
			PromoterIDs: []string{"promo-1"},
			UnitPrice:   decimal.NewFromInt(100),
			Capacity:    10,
		},
	}}

	svc := service.NewEventService(catalog, clock.NewFixed(testNow))
	h := NewEventHandler(svc)
	provider := auth.NewJWTProvider("test-secret")

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/events", h.ListEvents)
		r.Get("/events/{id}", h.GetEvent)
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(provider))
			r.Post("/events", h.CreateEvent)
			r.Put("/events/{id}/price", h.UpdatePrice)
			r.Post("/events/{id}/coupon", h.AddCoupon)
			r.Post("/events/{id}/promoters", h.AssignPromoter)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, catalog, provider
}

func TestEventHandler_ListEventsIsPublic(t *testing.T) {
	srv, _, _ := newEventTestServer(t)

	resp, env := doRequest(t, http.MethodGet, srv.URL+"/api/events", "", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.Count == nil || *env.Count != 1 {
		t.Fatalf("expected count 1, got %v", env.Count)
	}
}

func TestEventHandler_CreateEvent(t *testing.T) {
	srv, catalog, provider := newEventTestServer(t)

	t.Run("organizers create events", func(t *testing.T) {
		authz := bearerToken(t, provider, "org-1", model.RoleOrganizer)
		resp, env := doRequest(t, http.MethodPost, srv.URL+"/api/events", authz, model.CreateEventRequest{
			Title:       "GopherCon",
			Description: "Talks and workshops",
			Date:        testNow.Add(60 * 24 * time.Hour),
			Location:    "Amsterdam",
			UnitPrice:   decimal.NewFromInt(50),
			Capacity:    500,
		})
		if resp.StatusCode != http.StatusCreated || !env.Success {
			t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, env.Message)
		}
		var e model.Event
		if err := json.Unmarshal(env.Data, &e); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if e.AvailableSeats != 500 {
			t.Fatalf("expected available seats 500, got %d", e.AvailableSeats)
		}
		if catalog.events[e.ID] == nil {
			t.Fatal("expected event persisted")
		}
	})

	t.Run("non-organizers are rejected", func(t *testing.T) {
		authz := bearerToken(t, provider, "user-1", model.RoleUser)
		resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/events", authz, model.CreateEventRequest{
			Title: "Nope", Description: "x", Date: testNow, Location: "x", Capacity: 1,
		})
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})
}

func TestEventHandler_PromoterOperations(t *testing.T) {
	srv, catalog, provider := newEventTestServer(t)
	assigned := bearerToken(t, provider, "promo-1", model.RolePromoter)
	unassigned := bearerToken(t, provider, "promo-2", model.RolePromoter)

	t.Run("assigned promoter updates the price", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPut, srv.URL+"/api/events/ev-1/price", assigned,
			model.UpdatePriceRequest{UnitPrice: decimal.NewFromInt(75)})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !catalog.events["ev-1"].UnitPrice.Equal(decimal.NewFromInt(75)) {
			t.Fatalf("expected price 75, got %s", catalog.events["ev-1"].UnitPrice)
		}
	})

	t.Run("unassigned promoter gets 403", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPut, srv.URL+"/api/events/ev-1/price", unassigned,
			model.UpdatePriceRequest{UnitPrice: decimal.NewFromInt(75)})
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("assigned promoter adds a coupon", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/events/ev-1/coupon", assigned,
			model.AddCouponRequest{Code: "SAVE10", DiscountPercent: 10, ValidUntil: testNow.Add(time.Hour)})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		if len(catalog.events["ev-1"].Coupons) != 1 {
			t.Fatalf("expected one coupon, got %d", len(catalog.events["ev-1"].Coupons))
		}
	})
}

func TestEventHandler_AssignPromoter(t *testing.T) {
	srv, catalog, provider := newEventTestServer(t)

	t.Run("organizer assigns a promoter", func(t *testing.T) {
		authz := bearerToken(t, provider, "org-1", model.RoleOrganizer)
		resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/events/ev-1/promoters", authz,
			model.AssignPromoterRequest{PromoterID: "promo-2"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !catalog.events["ev-1"].HasPromoter("promo-2") {
			t.Fatal("expected promo-2 assigned")
		}
	})

	t.Run("other organizers get 403", func(t *testing.T) {
		authz := bearerToken(t, provider, "org-2", model.RoleOrganizer)
		resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/events/ev-1/promoters", authz,
			model.AssignPromoterRequest{PromoterID: "promo-3"})
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})
}
