package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yasso2006/2M-perfume-store/internal/bus"
	"github.com/yasso2006/2M-perfume-store/internal/cart"
	"github.com/yasso2006/2M-perfume-store/internal/catalog"
	"github.com/yasso2006/2M-perfume-store/internal/checkout"
	"github.com/yasso2006/2M-perfume-store/internal/domain"
	"github.com/yasso2006/2M-perfume-store/internal/notify"
	"github.com/yasso2006/2M-perfume-store/internal/store"
)

type blockedOrderAPI struct{}

func (blockedOrderAPI) SubmitOrder(context.Context, *checkout.OrderRequest) error {
	panic("no remote call expected")
}

func (blockedOrderAPI) SubmitContact(context.Context, *checkout.ContactForm) error {
	panic("no remote call expected")
}

// setupRouter wires the three mount points the way cmd/storefront does:
// separate view models and notification queues over one store and bus.
func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	b := bus.New()
	cartStore := store.NewCartStore(store.NewMemoryKV(), b)
	ctx := context.Background()

	catalogVM := cart.New(cartStore, b)
	catalogVM.Activate(ctx)
	t.Cleanup(catalogVM.Close)

	badgeVM := cart.New(cartStore, b)
	badgeVM.Activate(ctx)
	t.Cleanup(badgeVM.Close)

	checkoutVM := cart.New(cartStore, b)
	checkoutVM.Activate(ctx)
	t.Cleanup(checkoutVM.Close)

	catalogNotices := notify.NewScheduler()
	t.Cleanup(catalogNotices.Close)
	checkoutNotices := notify.NewScheduler()
	t.Cleanup(checkoutNotices.Close)

	api := blockedOrderAPI{}
	orderService := checkout.NewService(cartStore, api, checkoutNotices)
	contactService := checkout.NewContactService(api, checkoutNotices)

	catalogHandler := NewCatalogHandler(catalog.NewClient("http://unused", time.Second), catalogVM, catalogNotices)
	badgeHandler := NewBadgeHandler(badgeVM)
	checkoutHandler := NewCheckoutHandler(checkoutVM, orderService, contactService, checkoutNotices)

	r := chi.NewRouter()
	r.Get("/cart/badge", badgeHandler.Get)
	r.Post("/cart/items", catalogHandler.AddToCart)
	r.Put("/cart/items/{pos}/increase", checkoutHandler.IncreaseItem)
	r.Put("/cart/items/{pos}/decrease", checkoutHandler.DecreaseItem)
	r.Delete("/cart/items/{pos}", checkoutHandler.RemoveItem)
	r.Get("/checkout", checkoutHandler.Get)
	r.Post("/checkout", checkoutHandler.SubmitOrder)
	r.Get("/catalog/notifications", catalogHandler.Notifications)
	r.Get("/checkout/notifications", checkoutHandler.Notifications)

	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAddToCart_BadgeObservesChange(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, "POST", "/cart/items", AddItemRequestDTO{
		ProductID: 1,
		Name:      "Rose",
		Price:     100,
		Quantity:  2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	// The badge mount point shares nothing in memory with the catalog one;
	// it must still see the new line via the store and the bus.
	rec = doJSON(t, r, "GET", "/cart/badge", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var badge BadgeResponse
	if err := json.NewDecoder(rec.Body).Decode(&badge); err != nil {
		t.Fatalf("failed to decode badge: %v", err)
	}
	if badge.Lines != 1 {
		t.Errorf("expected 1 line, got %d", badge.Lines)
	}
	if badge.Units != 2 {
		t.Errorf("expected 2 units, got %d", badge.Units)
	}
}

func TestAddToCart_InvalidQuantity(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, "POST", "/cart/items", AddItemRequestDTO{
		ProductID: 1,
		Name:      "Rose",
		Quantity:  100,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAddToCart_NotifiesCatalogMountOnly(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/cart/items", AddItemRequestDTO{ProductID: 1, Name: "Oud", Quantity: 1})

	rec := doJSON(t, r, "GET", "/catalog/notifications", nil)
	var catalogNotices []notify.Notification
	if err := json.NewDecoder(rec.Body).Decode(&catalogNotices); err != nil {
		t.Fatalf("failed to decode notifications: %v", err)
	}
	if len(catalogNotices) != 1 {
		t.Fatalf("expected 1 catalog notification, got %d", len(catalogNotices))
	}

	rec = doJSON(t, r, "GET", "/checkout/notifications", nil)
	var checkoutNotices []notify.Notification
	if err := json.NewDecoder(rec.Body).Decode(&checkoutNotices); err != nil {
		t.Fatalf("failed to decode notifications: %v", err)
	}
	if len(checkoutNotices) != 0 {
		t.Errorf("expected no checkout notifications, got %d", len(checkoutNotices))
	}
}

func TestCheckoutView_TotalsRecomputedPerRequest(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/cart/items", AddItemRequestDTO{ProductID: 1, Name: "Rose", Price: 100, Quantity: 2})

	rec := doJSON(t, r, "GET", "/checkout", nil)
	var view struct {
		Items   domain.Cart      `json:"items"`
		Summary checkout.Summary `json:"summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	if view.Summary.Subtotal != 200 {
		t.Errorf("expected subtotal 200, got %f", view.Summary.Subtotal)
	}
	if view.Summary.Total != 220 {
		t.Errorf("expected total 220, got %f", view.Summary.Total)
	}

	// Mutate through the checkout mount and re-read.
	doJSON(t, r, "PUT", "/cart/items/0/increase", nil)

	rec = doJSON(t, r, "GET", "/checkout", nil)
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	if view.Summary.Subtotal != 300 {
		t.Errorf("expected subtotal 300 after increase, got %f", view.Summary.Subtotal)
	}
}

func TestDecreaseItem_AtQuantityOne_RemovesLine(t *testing.T) {
	r := setupRouter(t)

	doJSON(t, r, "POST", "/cart/items", AddItemRequestDTO{ProductID: 1, Name: "Iris", Price: 40, Quantity: 1})
	doJSON(t, r, "PUT", "/cart/items/0/decrease", nil)

	rec := doJSON(t, r, "GET", "/cart/badge", nil)
	var badge BadgeResponse
	if err := json.NewDecoder(rec.Body).Decode(&badge); err != nil {
		t.Fatalf("failed to decode badge: %v", err)
	}
	if badge.Lines != 0 {
		t.Errorf("expected empty cart, got %d lines", badge.Lines)
	}
}

func TestMutation_InvalidPosition(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, "PUT", "/cart/items/abc/increase", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSubmitOrder_EmptyCart_ValidationError(t *testing.T) {
	r := setupRouter(t)

	// blockedOrderAPI panics on any remote call, so a 400 here proves the
	// submission was rejected before any network attempt.
	rec := doJSON(t, r, "POST", "/checkout", checkout.BillingDetails{
		Name:    "Yasmin A",
		Email:   "yasmin@example.com",
		Phone:   "0600123456",
		Address: "12 Rue des Fleurs",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Code != "validation_failed" {
		t.Errorf("expected code validation_failed, got %q", errResp.Code)
	}
}
