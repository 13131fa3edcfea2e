package messaging

import (
	"context"
)

// Broker is the interface notification events are published through. The API
// process never talks to a provider directly; it writes outbox rows and the
// worker relays them here.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published on notification channels.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
