package http

import (
	"encoding/json"
	"net/http"

	"github.com/yasso2006/2M-perfume-store/internal/cart"
	"github.com/yasso2006/2M-perfume-store/internal/catalog"
	"github.com/yasso2006/2M-perfume-store/internal/domain"
	"github.com/yasso2006/2M-perfume-store/internal/notify"
)

// CatalogHandler serves the product-browsing surface. It owns its own view
// model and notification queue; cart state reaches it only through the store
// and the bus.
type CatalogHandler struct {
	products *catalog.Client
	vm       *cart.ViewModel
	notices  *notify.Scheduler
}

func NewCatalogHandler(products *catalog.Client, vm *cart.ViewModel, notices *notify.Scheduler) *CatalogHandler {
	return &CatalogHandler{
		products: products,
		vm:       vm,
		notices:  notices,
	}
}

type AddItemRequestDTO struct {
	ProductID int64        `json:"product_id"`
	Name      string       `json:"name"`
	Price     domain.Price `json:"price"`
	Image     string       `json:"image,omitempty"`
	Quantity  int          `json:"quantity"`
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "failed to load products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	line := domain.CartLine{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.Price,
		Image:     req.Image,
		Quantity:  req.Quantity,
	}
	if err := h.vm.AddLine(r.Context(), line); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	h.notices.Enqueue(req.Name+" added to cart", notify.KindSuccess, noticeTTL)
	respondJSON(w, http.StatusCreated, h.vm.Snapshot())
}

func (h *CatalogHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.notices.Active())
}
