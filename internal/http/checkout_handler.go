package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yasso2006/2M-perfume-store/internal/cart"
	"github.com/yasso2006/2M-perfume-store/internal/checkout"
	"github.com/yasso2006/2M-perfume-store/internal/notify"
)

// noticeTTL is how long surface-level advisory notifications stay active.
const noticeTTL = 5 * time.Second

// CheckoutHandler serves the checkout surface: line mutations, totals, order
// submission and the contact form.
type CheckoutHandler struct {
	vm      *cart.ViewModel
	orders  *checkout.Service
	contact *checkout.ContactService
	notices *notify.Scheduler
}

func NewCheckoutHandler(vm *cart.ViewModel, orders *checkout.Service, contact *checkout.ContactService, notices *notify.Scheduler) *CheckoutHandler {
	return &CheckoutHandler{
		vm:      vm,
		orders:  orders,
		contact: contact,
		notices: notices,
	}
}

type CheckoutView struct {
	Items   interface{}      `json:"items"`
	Summary checkout.Summary `json:"summary"`
}

func (h *CheckoutHandler) view() CheckoutView {
	snapshot := h.vm.Snapshot()
	return CheckoutView{
		Items:   snapshot,
		Summary: checkout.Totals(snapshot),
	}
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CheckoutHandler) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	pos, ok := positionParam(w, r)
	if !ok {
		return
	}
	if err := h.vm.IncreaseQuantity(r.Context(), pos); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update quantity")
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CheckoutHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	pos, ok := positionParam(w, r)
	if !ok {
		return
	}
	if err := h.vm.DecreaseQuantity(r.Context(), pos); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update quantity")
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CheckoutHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	pos, ok := positionParam(w, r)
	if !ok {
		return
	}
	if err := h.vm.RemoveLine(r.Context(), pos); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CheckoutHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var billing checkout.BillingDetails
	if err := json.NewDecoder(r.Body).Decode(&billing); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orders.Submit(r.Context(), billing); err != nil {
		handleSubmitError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CheckoutHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form checkout.ContactForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.contact.Submit(r.Context(), form); err != nil {
		handleSubmitError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CheckoutHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.notices.Active())
}

func positionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	posStr := chi.URLParam(r, "pos")
	pos, err := strconv.Atoi(posStr)
	if err != nil || pos < 0 {
		respondError(w, http.StatusBadRequest, "invalid_position", "position must be a non-negative integer")
		return 0, false
	}
	return pos, true
}

func handleSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "a submission is already in progress")
	case errors.Is(err, checkout.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, checkout.ErrServerRejected):
		respondError(w, http.StatusBadGateway, "server_rejected", "the order service rejected the request")
	case errors.Is(err, checkout.ErrNetwork):
		respondError(w, http.StatusServiceUnavailable, "network_error", "the order service is unreachable")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}
