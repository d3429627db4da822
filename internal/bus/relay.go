package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const relayTopic = "cart-updated"

// envelope is the wire shape of a relayed invalidation. Origin identifies the
// emitting process so it can skip its own messages on the way back in.
type envelope struct {
	Origin string    `json:"origin"`
	SentAt time.Time `json:"sent_at"`
}

// Relay bridges the in-process bus across storefront processes: local cart
// writes are forwarded to Kafka, and invalidations from other processes are
// re-published on the local bus. Subscribers cannot tell local and remote
// invalidations apart.
type Relay struct {
	bus    *Bus
	origin string
	reader *kafka.Reader
	writer *kafka.Writer
}

func NewRelay(b *Bus, brokers ...string) *Relay {
	origin := uuid.New().String()
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   relayTopic,
		// Unique group per process: every process must see every event.
		GroupID:  "storefront-" + origin,
		MaxBytes: 10e6, // 10MB
	})
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  relayTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Relay{
		bus:    b,
		origin: origin,
		reader: reader,
		writer: w,
	}
}

// Publish implements the store's Publisher and forwards the invalidation to
// other processes. Fire-and-forget: a broker hiccup only delays remote views,
// it never fails the originating write.
func (r *Relay) Publish() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(envelope{Origin: r.origin, SentAt: time.Now()})
	if err != nil {
		log.Printf("failed to marshal relay envelope: %v", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(r.origin),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("CartUpdated")},
		},
	}
	if errWrite := r.writer.WriteMessages(ctx, msg); errWrite != nil {
		log.Printf("failed to forward cart update: %v", errWrite)
	}
}

func (r *Relay) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		r.processMessage(ctx)
	}
}

func (r *Relay) Close() {
	if err := r.reader.Close(); err != nil {
		log.Printf("error closing relay reader: %v", err)
	}
	if err := r.writer.Close(); err != nil {
		log.Printf("error closing relay writer: %v", err)
	}
}

func (r *Relay) processMessage(ctx context.Context) {
	m, err := r.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading relay message: %v", err)
		return
	}
	r.handleMessage(m.Value)
}

func (r *Relay) handleMessage(value []byte) {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("error parsing relay message: %v", err)
		return
	}
	if env.Origin == r.origin {
		// Our own write; local subscribers already saw it.
		return
	}
	r.bus.Publish()
}
