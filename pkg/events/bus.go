package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const GraphTopic = "notecanvas.graph"

// Publisher is what the graph store needs from an event sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Envelope is the wire form of an event on the bus and on push channels.
// Seq increases with every publish; delivery order across subscribers is
// not guaranteed, so consumers order by Seq.
type Envelope struct {
	Seq        uint64                 `json:"seq"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e Envelope) EventType() string               { return e.Type }
func (e Envelope) Payload() map[string]interface{} { return e.Data }
func (e Envelope) Timestamp() time.Time            { return e.OccurredAt }

// Bus fans graph events out to in-process consumers (websocket hub, NATS
// mirror) over a watermill go channel.
type Bus struct {
	pubSub *gochannel.GoChannel
	seq    atomic.Uint64
}

func NewBus(logger watermill.LoggerAdapter) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, logger),
	}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	env := Envelope{
		Seq:        b.seq.Add(1),
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", env.Type, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", env.Type)

	return b.pubSub.Publish(GraphTopic, msg)
}

// Handler receives a decoded envelope plus its raw JSON.
type Handler func(ctx context.Context, env Envelope, raw []byte)

// Consume subscribes and runs handle for every event until ctx is done.
// Messages are always acked; consumers here are best-effort mirrors.
func (b *Bus) Consume(ctx context.Context, handle Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, GraphTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", GraphTopic, err)
	}

	for msg := range messages {
		var env Envelope
		if err := json.Unmarshal(msg.Payload, &env); err == nil {
			handle(ctx, env, msg.Payload)
		}
		msg.Ack()
	}
	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
