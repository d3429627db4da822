package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Price tolerates the loose typing of catalog payloads: prices arrive as JSON
// numbers or as numeric strings, and occasionally as garbage. Anything that
// fails to coerce becomes 0 so a single bad line cannot poison subtotal
// computation.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*p = 0
			return nil
		}
		*p = Price(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*p = 0
		return nil
	}
	*p = Price(f)
	return nil
}

// CartLine is one product instance in the basket. Identity fields are copied
// from the catalog entry at add time. Quantity is never persisted below 1; a
// line that would drop to 0 is removed instead.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice Price  `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Cart is an insertion-ordered sequence of lines. Order matters for display
// only: checkout lists items in cart order.
type Cart []CartLine

// Subtotal sums unit price times quantity over all lines. Malformed prices
// already decoded to 0, so the aggregate stays computable.
func (c Cart) Subtotal() float64 {
	var sum float64
	for _, line := range c {
		sum += float64(line.UnitPrice) * float64(line.Quantity)
	}
	return sum
}

// Units is the total number of product units across all lines.
func (c Cart) Units() int {
	var n int
	for _, line := range c {
		n += line.Quantity
	}
	return n
}

// Clone returns an independent copy so derived carts never alias a snapshot
// held by another mount point.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Product is a catalog record. The catalog schema is not validated beyond the
// fields used here; a missing price decodes to 0.
type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price Price  `json:"price"`
	Image string `json:"image,omitempty"`
}
