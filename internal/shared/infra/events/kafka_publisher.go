package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/cinelab/internal/shared/infra/platform/bus"
)

const eventTypeHeader = "event_type"

// KafkaPublisher escribe en el topic configurado en el writer.
// La clave del mensaje sale de Keyer y la cabecera event_type de Typed.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

// buildMessage serializa el evento en un kafka.Message.
func buildMessage(event interface{}) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	msg := kafka.Message{Value: data}
	if keyer, ok := event.(sharedBus.Keyer); ok {
		msg.Key = []byte(keyer.PartitionKey())
	}
	if typed, ok := event.(sharedBus.Typed); ok {
		msg.Headers = append(msg.Headers, kafka.Header{Key: eventTypeHeader, Value: []byte(typed.EventType())})
	}
	return msg, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("topic", p.writer.Topic), zap.Error(err))
		return err
	}

	p.log.Debug("Event published",
		zap.String("topic", p.writer.Topic),
		zap.ByteString("key", msg.Key))
	return nil
}

var _ sharedBus.EventBus = (*KafkaPublisher)(nil)
