package cart

import (
	"context"
	"sync"

	"github.com/yasso2006/2M-perfume-store/internal/bus"
	"github.com/yasso2006/2M-perfume-store/internal/domain"
	"github.com/yasso2006/2M-perfume-store/internal/store"
	"golang.org/x/sync/singleflight"
)

// ViewModel is the per-mount-point view over the cart store and the bus.
// Each UI surface (catalog page, cart badge, checkout) owns one instance; the
// local snapshot is a cache and never ground truth.
type ViewModel struct {
	store *store.CartStore
	bus   *bus.Bus
	sfg   singleflight.Group // collapses a burst of invalidations into one read

	mu          sync.RWMutex
	snapshot    domain.Cart
	onChange    func(domain.Cart)
	unsubscribe func()
}

func New(s *store.CartStore, b *bus.Bus) *ViewModel {
	return &ViewModel{
		store: s,
		bus:   b,
	}
}

// OnChange registers a callback invoked with the fresh cart after every
// refresh. Set it before Activate.
func (vm *ViewModel) OnChange(fn func(domain.Cart)) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.onChange = fn
}

// Activate performs the initial read and subscribes to cart-change broadcasts.
// Broadcast handling is a full re-read: it is idempotent, so the view model
// tolerates receiving its own broadcast.
func (vm *ViewModel) Activate(ctx context.Context) {
	vm.refresh(ctx)
	vm.unsubscribe = vm.bus.Subscribe(func() {
		vm.refresh(context.Background())
	})
}

// Close deregisters the broadcast handler. Mandatory on teardown, otherwise
// the handler keeps firing against a dead view.
func (vm *ViewModel) Close() {
	if vm.unsubscribe != nil {
		vm.unsubscribe()
		vm.unsubscribe = nil
	}
}

// Snapshot returns a copy of the local view.
func (vm *ViewModel) Snapshot() domain.Cart {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.snapshot.Clone()
}

// AddLine appends a line to the basket. Adding the same product twice yields
// two distinct lines; merging is a product decision nobody has taken yet.
func (vm *ViewModel) AddLine(ctx context.Context, line domain.CartLine) error {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	current := vm.store.Read(ctx)
	next := append(current.Clone(), line)
	return vm.commit(ctx, next)
}

// RemoveLine deletes the line at the given position. Out-of-range positions
// are no-ops: the view that issued the call was simply stale.
func (vm *ViewModel) RemoveLine(ctx context.Context, pos int) error {
	current := vm.store.Read(ctx)
	if pos < 0 || pos >= len(current) {
		return nil
	}
	next := current.Clone()
	next = append(next[:pos], next[pos+1:]...)
	return vm.commit(ctx, next)
}

func (vm *ViewModel) IncreaseQuantity(ctx context.Context, pos int) error {
	current := vm.store.Read(ctx)
	if pos < 0 || pos >= len(current) {
		return nil
	}
	next := current.Clone()
	next[pos].Quantity++
	return vm.commit(ctx, next)
}

// DecreaseQuantity lowers the quantity at the given position. At quantity 1
// the line is removed instead: quantity 0 must never be persisted.
func (vm *ViewModel) DecreaseQuantity(ctx context.Context, pos int) error {
	current := vm.store.Read(ctx)
	if pos < 0 || pos >= len(current) {
		return nil
	}
	if current[pos].Quantity <= 1 {
		return vm.RemoveLine(ctx, pos)
	}
	next := current.Clone()
	next[pos].Quantity--
	return vm.commit(ctx, next)
}

// commit persists the derived cart and updates the local view immediately,
// without waiting for the self-broadcast round trip, to keep the initiating
// surface responsive.
func (vm *ViewModel) commit(ctx context.Context, next domain.Cart) error {
	if err := vm.store.Write(ctx, next); err != nil {
		return err
	}
	vm.setSnapshot(next)
	return nil
}

func (vm *ViewModel) refresh(ctx context.Context) {
	fresh, _, _ := vm.sfg.Do("cart", func() (interface{}, error) {
		return vm.store.Read(ctx), nil
	})
	vm.setSnapshot(fresh.(domain.Cart))
}

func (vm *ViewModel) setSnapshot(cart domain.Cart) {
	vm.mu.Lock()
	vm.snapshot = cart.Clone()
	fn := vm.onChange
	vm.mu.Unlock()

	if fn != nil {
		fn(cart.Clone())
	}
}
