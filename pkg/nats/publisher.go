package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "NOTECANVAS"
	SubjectPrefix = "notecanvas"
)

// Subject maps an event type onto the mirror stream's subject space.
func Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

// Publisher mirrors graph events onto a JetStream stream so other local
// tools can follow the canvas.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(url string, log logger.ILogger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		// NATS may still be starting; publishing will fail loudly later.
		log.Warn("NATS", "Failed to ensure stream", map[string]interface{}{
			"stream": StreamName,
			"error":  err.Error(),
		})
	}

	return &Publisher{nc: nc, js: js, logger: log}, nil
}

// Publish sends an event to NATS.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	env, ok := event.(events.Envelope)
	if !ok {
		env = events.Envelope{
			Type:       event.EventType(),
			Data:       event.Payload(),
			OccurredAt: event.Timestamp(),
		}
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := Subject(event.EventType())

	_, err = p.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}

	return nil
}

// Mirror forwards every bus event until ctx is done. Failures are logged
// and dropped; the mirror never holds back the canvas.
func (p *Publisher) Mirror(ctx context.Context, bus *events.Bus) error {
	return bus.Consume(ctx, func(ctx context.Context, env events.Envelope, _ []byte) {
		pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := p.Publish(pubCtx, env); err != nil {
			p.logger.Warn("NATS", "Failed to mirror event", map[string]interface{}{
				"type":  env.Type,
				"seq":   env.Seq,
				"error": err.Error(),
			})
		}
	})
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
