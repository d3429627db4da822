package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/yasso2006/2M-perfume-store/internal/domain"
)

var (
	// ErrNetwork covers transport failures: the service never answered.
	ErrNetwork = errors.New("order service unreachable")
	// ErrServerRejected covers non-success statuses: the service answered no.
	ErrServerRejected = errors.New("order service rejected the request")
)

type BillingDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes,omitempty"`
}

type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

type OrderRequest struct {
	Items   domain.Cart    `json:"items"`
	Billing BillingDetails `json:"billing"`
	Summary Summary        `json:"summary"`
}

// OrderAPI is the remote order endpoint. The core depends only on the
// success/failure discriminator, never on the response body.
type OrderAPI interface {
	SubmitOrder(ctx context.Context, req *OrderRequest) error
}

// ContactAPI is the remote contact-form endpoint.
type ContactAPI interface {
	SubmitContact(ctx context.Context, form *ContactForm) error
}

// HTTPClient talks to the store backend over plain HTTP. All calls pass
// through a circuit breaker so a dead backend fails fast instead of tying up
// every submitting surface for the full timeout.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name: "store-api",
		}),
	}
}

func (c *HTTPClient) SubmitOrder(ctx context.Context, req *OrderRequest) error {
	// Idempotency key lets the backend dedupe a retried submission.
	return c.post(ctx, "/orders", req, uuid.New().String())
}

func (c *HTTPClient) SubmitContact(ctx context.Context, form *ContactForm) error {
	return c.post(ctx, "/contact", form, "")
}

func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}, idempotencyKey string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}

	_, err = c.breaker.Execute(func() (struct{}, error) {
		httpReq, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if errReq != nil {
			return struct{}{}, fmt.Errorf("build request failed: %w", errReq)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if idempotencyKey != "" {
			httpReq.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, errDo := c.client.Do(httpReq)
		if errDo != nil {
			return struct{}{}, fmt.Errorf("%w: %v", ErrNetwork, errDo)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return struct{}{}, fmt.Errorf("%w: status %d", ErrServerRejected, resp.StatusCode)
		}
		return struct{}{}, nil
	})
	return err
}
