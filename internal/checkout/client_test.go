package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yasso2006/2M-perfume-store/internal/domain"
)

func TestSubmitOrder_Success(t *testing.T) {
	var gotPath, gotIdempotencyKey string
	var gotBody OrderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sut := NewHTTPClient(srv.URL, 5*time.Second)

	req := &OrderRequest{
		Items:   domain.Cart{{ProductID: 1, Name: "Rose", UnitPrice: 100, Quantity: 2}},
		Billing: BillingDetails{Name: "Yasmin A", Email: "yasmin@example.com"},
		Summary: Summary{Subtotal: 200, Shipping: 20, Total: 220},
	}
	err := sut.SubmitOrder(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "/orders", gotPath)
	assert.NotEmpty(t, gotIdempotencyKey, "order submissions must carry an idempotency key")
	assert.Equal(t, 220.0, gotBody.Summary.Total)
}

func TestSubmitOrder_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sut := NewHTTPClient(srv.URL, 5*time.Second)

	err := sut.SubmitOrder(context.Background(), &OrderRequest{})
	require.ErrorIs(t, err, ErrServerRejected)
}

func TestSubmitOrder_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from now on

	sut := NewHTTPClient(srv.URL, time.Second)

	err := sut.SubmitOrder(context.Background(), &OrderRequest{})
	require.ErrorIs(t, err, ErrNetwork)
}

func TestSubmitContact_Success(t *testing.T) {
	var gotPath string
	var gotForm ContactForm

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotForm))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sut := NewHTTPClient(srv.URL, 5*time.Second)

	err := sut.SubmitContact(context.Background(), &ContactForm{
		Name:    "Sami",
		Email:   "sami@example.com",
		Message: "do you ship abroad?",
	})

	require.NoError(t, err)
	assert.Equal(t, "/contact", gotPath)
	assert.Equal(t, "Sami", gotForm.Name)
}
