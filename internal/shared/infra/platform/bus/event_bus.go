package bus

import "context"

// Keyer lo implementan los eventos que necesitan orden por agregado.
type Keyer interface {
	PartitionKey() string
}

// Typed lo implementan los eventos que llevan su tipo (cabecera event_type en Kafka).
type Typed interface {
	EventType() string
}

// EventBus publica un evento; el topic y el formato los decide el adapter.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}
