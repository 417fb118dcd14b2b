package event

import (
	"context"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// Publisher delivers serialized events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg []byte) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	return p.conn.Publish(topic, msg)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// LogPublisher is used when no broker is configured and in tests.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	log.Printf("[EVENT] %s %s", topic, msg)
	return nil
}

func (LogPublisher) Close() error { return nil }
