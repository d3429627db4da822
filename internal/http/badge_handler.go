package http

import (
	"net/http"

	"github.com/yasso2006/2M-perfume-store/internal/cart"
)

// BadgeHandler serves the cart indicator. It never mutates the cart; its view
// model stays fresh purely through bus invalidations from the other surfaces.
type BadgeHandler struct {
	vm *cart.ViewModel
}

func NewBadgeHandler(vm *cart.ViewModel) *BadgeHandler {
	return &BadgeHandler{vm: vm}
}

type BadgeResponse struct {
	Lines int `json:"lines"`
	Units int `json:"units"`
}

func (h *BadgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot := h.vm.Snapshot()
	respondJSON(w, http.StatusOK, BadgeResponse{
		Lines: len(snapshot),
		Units: snapshot.Units(),
	})
}
