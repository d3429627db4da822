package checkout

import "github.com/yasso2006/2M-perfume-store/internal/domain"

// ShippingFee is the flat delivery charge applied to every order.
const ShippingFee = 20.0

type Summary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// Totals derives the order summary from the cart alone. It is recomputed on
// every read rather than cached, so it can never drift from the store.
func Totals(cart domain.Cart) Summary {
	sub := cart.Subtotal()
	return Summary{
		Subtotal: sub,
		Shipping: ShippingFee,
		Total:    sub + ShippingFee,
	}
}
