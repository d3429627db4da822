package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yasso2006/2M-perfume-store/internal/domain"
)

type recordingPublisher struct {
	m        sync.Mutex
	publishd int
}

func (p *recordingPublisher) Publish() {
	p.m.Lock()
	defer p.m.Unlock()
	p.publishd++
}

func (p *recordingPublisher) count() int {
	p.m.Lock()
	defer p.m.Unlock()
	return p.publishd
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("backend down")
}

func TestWriteThenRead_RoundTrip(t *testing.T) {
	pub := &recordingPublisher{}
	sut := NewCartStore(NewMemoryKV(), pub)
	ctx := context.Background()

	cart := domain.Cart{
		{ProductID: 1, Name: "Rose", UnitPrice: 100, Quantity: 2},
		{ProductID: 2, Name: "Oud", UnitPrice: 250, Quantity: 1},
	}

	require.NoError(t, sut.Write(ctx, cart))

	got := sut.Read(ctx)
	assert.Equal(t, cart, got)
}

func TestRead_AbsentSlot_ReturnsEmptyCart(t *testing.T) {
	sut := NewCartStore(NewMemoryKV(), &recordingPublisher{})

	got := sut.Read(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRead_MalformedPayload_ReturnsEmptyCart(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, cartKey, []byte(`{"not":"a cart`)))

	sut := NewCartStore(kv, &recordingPublisher{})

	got := sut.Read(ctx)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRead_BackendError_ReturnsEmptyCart(t *testing.T) {
	sut := NewCartStore(failingKV{}, &recordingPublisher{})

	got := sut.Read(context.Background())
	assert.Empty(t, got)
}

func TestWrite_Broadcasts(t *testing.T) {
	pub := &recordingPublisher{}
	sut := NewCartStore(NewMemoryKV(), pub)
	ctx := context.Background()

	require.NoError(t, sut.Write(ctx, domain.Cart{{ProductID: 1, Quantity: 1}}))
	assert.Equal(t, 1, pub.count())
}

func TestWrite_EmptyCart_PersistsAndBroadcasts(t *testing.T) {
	pub := &recordingPublisher{}
	kv := NewMemoryKV()
	sut := NewCartStore(kv, pub)
	ctx := context.Background()

	require.NoError(t, sut.Write(ctx, domain.Cart{{ProductID: 1, Quantity: 1}}))
	require.NoError(t, sut.Write(ctx, domain.Cart{}))

	// The empty value must actually land in storage, not be skipped.
	data, err := kv.Get(ctx, cartKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
	assert.Equal(t, 2, pub.count())
}

func TestWrite_NilCart_StoredAsEmpty(t *testing.T) {
	pub := &recordingPublisher{}
	sut := NewCartStore(NewMemoryKV(), pub)
	ctx := context.Background()

	require.NoError(t, sut.Write(ctx, nil))
	assert.Empty(t, sut.Read(ctx))
}

func TestWrite_BackendError_NoBroadcast(t *testing.T) {
	pub := &recordingPublisher{}
	sut := NewCartStore(failingKV{}, pub)

	err := sut.Write(context.Background(), domain.Cart{{ProductID: 1, Quantity: 1}})
	require.Error(t, err)
	assert.Zero(t, pub.count())
}
