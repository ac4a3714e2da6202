package events

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/davicafu/cinelab/internal/shared/infra/platform/bus"
)

// InMemoryEventBus es el bus para un solo topic cuando Kafka está desactivado.
// Entrega JSON a cada suscriptor; si un canal está lleno el mensaje se descarta.
type InMemoryEventBus struct {
	subscribers []chan interface{}
	mu          sync.RWMutex
	topic       string
}

var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan interface{}, 0),
		topic:       topic,
	}
}

func (b *InMemoryEventBus) Topic() string { return b.topic }

// Publish serializa el evento y lo reparte en background.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	subs := append([]chan interface{}(nil), b.subscribers...)
	b.mu.RUnlock()

	if len(subs) > 0 {
		go distribute(subs, payloadBytes)
	}
	return nil
}

func distribute(subs []chan interface{}, event interface{}) {
	for _, subChan := range subs {
		select {
		case subChan <- event:
		default:
		}
	}
}

// Subscribe devuelve un canal con buffer bufferSize que recibe []byte.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan interface{}, bufferSize)
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}

// BackgroundConsumerChan conecta un canal del bus con un MessageHandler.
func BackgroundConsumerChan(ctx context.Context, ch <-chan interface{}, handler MessageHandler) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				if payload, ok := msg.([]byte); ok {
					// La key no aplica al bus en memoria
					handler.HandleMessage(ctx, "", payload)
				}
			}
		}
	}()
}
