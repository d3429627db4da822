package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/yasso2006/2M-perfume-store/internal/domain"
)

// cartKey is the fixed well-known slot the serialized cart lives under.
const cartKey = "cart"

// Publisher announces "the cart changed" to whoever is listening. No payload:
// subscribers must re-read the store rather than trust a delta.
type Publisher interface {
	Publish()
}

// CartStore is the single source of truth for the basket. Every mount point
// reads and writes through its own view model, but all of them land here.
type CartStore struct {
	kv  KV
	bus Publisher
}

func NewCartStore(kv KV, bus Publisher) *CartStore {
	return &CartStore{
		kv:  kv,
		bus: bus,
	}
}

// Read returns the durably stored cart. An absent slot, a malformed payload
// or a backend failure all degrade to an empty cart; a corrupt basket must
// never surface as a fault to a render path.
func (s *CartStore) Read(ctx context.Context) domain.Cart {
	data, err := s.kv.Get(ctx, cartKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.Printf("cart read failed, treating as empty: %v", err)
		}
		return domain.Cart{}
	}

	var cart domain.Cart
	if errDecode := json.Unmarshal(data, &cart); errDecode != nil {
		log.Printf("stored cart payload is malformed, treating as empty: %v", errDecode)
		return domain.Cart{}
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	return cart
}

// Write persists the cart and then broadcasts the change. The empty cart is
// persisted and announced like any other value: skipping it would leave other
// mount points holding a stale non-empty view after order completion.
func (s *CartStore) Write(ctx context.Context, cart domain.Cart) error {
	if cart == nil {
		cart = domain.Cart{}
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if errSet := s.kv.Set(ctx, cartKey, data); errSet != nil {
		return fmt.Errorf("persist cart failed: %w", errSet)
	}

	s.bus.Publish()
	return nil
}
