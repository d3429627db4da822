package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yasso2006/2M-perfume-store/internal/domain"
	"github.com/yasso2006/2M-perfume-store/internal/notify"
	"github.com/yasso2006/2M-perfume-store/internal/store"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

// noticeTTL is how long advisory notifications stay on screen.
const noticeTTL = 5 * time.Second

// Service drives order submission for the checkout surface.
type Service struct {
	store   *store.CartStore
	orders  OrderAPI
	notices *notify.Scheduler

	submitting atomic.Bool
}

func NewService(s *store.CartStore, orders OrderAPI, notices *notify.Scheduler) *Service {
	return &Service{
		store:   s,
		orders:  orders,
		notices: notices,
	}
}

// Submit validates the basket and billing details, posts the order, and on
// success clears the cart. The submitting flag blocks duplicate concurrent
// submissions and is released on every exit path; it does not cancel an
// in-flight request.
func (s *Service) Submit(ctx context.Context, billing BillingDetails) error {
	if !s.submitting.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}
	defer s.submitting.Store(false)

	cart := s.store.Read(ctx)
	if len(cart) == 0 {
		// An empty basket is a validation failure the user must be told
		// about, not a silent no-op.
		s.notices.Enqueue("your cart is empty", notify.KindWarning, noticeTTL)
		return fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	if fields := billing.missingFields(); len(fields) > 0 {
		msg := "missing required fields: " + strings.Join(fields, ", ")
		s.notices.Enqueue(msg, notify.KindWarning, noticeTTL)
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	}
	if !validEmail(billing.Email) {
		s.notices.Enqueue("invalid email address", notify.KindWarning, noticeTTL)
		return fmt.Errorf("%w: email", ErrValidation)
	}
	if !validPhone(billing.Phone) {
		s.notices.Enqueue("invalid phone number", notify.KindWarning, noticeTTL)
		return fmt.Errorf("%w: phone", ErrValidation)
	}

	req := &OrderRequest{
		Items:   cart,
		Billing: billing,
		Summary: Totals(cart),
	}
	if err := s.orders.SubmitOrder(ctx, req); err != nil {
		s.notices.Enqueue(failureMessage(err), notify.KindError, noticeTTL)
		return err
	}

	// Clearing the basket is a real write: it must persist and broadcast so
	// every other mount point drops its stale view.
	if errClear := s.store.Write(ctx, domain.Cart{}); errClear != nil {
		log.Printf("failed to clear cart after order: %v", errClear)
	}
	s.notices.Enqueue("order placed successfully", notify.KindSuccess, noticeTTL)
	return nil
}

func (b BillingDetails) missingFields() []string {
	var fields []string
	if strings.TrimSpace(b.Name) == "" {
		fields = append(fields, "name")
	}
	if strings.TrimSpace(b.Email) == "" {
		fields = append(fields, "email")
	}
	if strings.TrimSpace(b.Phone) == "" {
		fields = append(fields, "phone")
	}
	if strings.TrimSpace(b.Address) == "" {
		fields = append(fields, "address")
	}
	return fields
}

// failureMessage maps a submission error to the human-readable category shown
// to the user: network vs server vs unexpected.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrServerRejected):
		return "order failed: the server rejected the request"
	case errors.Is(err, ErrNetwork):
		return "order failed: network error, please try again"
	default:
		return "order failed: unexpected error"
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	return strings.Contains(domainPart, ".") && !strings.Contains(domainPart, "@")
}

func validPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
			// separators are fine
		default:
			return false
		}
	}
	return digits >= 7
}
