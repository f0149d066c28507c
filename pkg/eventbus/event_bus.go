// Package eventbus publishes and consumes editor events over watermill.
package eventbus

import (
	"context"

	"github.com/dukex/stateflow/pkg/events"
)

// Event is anything the bus can route by type.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes events keyed by the draft or workflow they concern.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives the decoded event, one of the events package structs.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
