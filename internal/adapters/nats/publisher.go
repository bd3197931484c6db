package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
)

// Subjects carried by the ROUTING stream.
const (
	StreamRouting             = "ROUTING"
	SubjectAll                = "routing.>"
	SubjectItineraryComputed  = "routing.itinerary.computed"
	SubjectGraphBuilt         = "routing.graph.built"
	SubjectBackendStateChange = "routing.backend.state"
)

var (
	_ ports.EventPublisher = (*Publisher)(nil)
	_ ports.StatePublisher = (*Publisher)(nil)
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the ROUTING stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamRouting,
		Subjects:  []string{SubjectAll},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// already there, bring its config up to date
		if _, err := js.UpdateStream(cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishItineraryComputed(ctx context.Context, event *domain.ItineraryComputedEvent) error {
	return p.publish(ctx, SubjectItineraryComputed, event)
}

func (p *Publisher) PublishGraphBuilt(ctx context.Context, event *domain.GraphBuiltEvent) error {
	return p.publish(ctx, SubjectGraphBuilt, event)
}

// PublishState announces a backend state change observed by the poller.
func (p *Publisher) PublishState(ctx context.Context, status domain.ServerStatus) error {
	return p.publish(ctx, SubjectBackendStateChange, status)
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection, e.g. for the WebSocket relay.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
