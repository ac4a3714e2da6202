package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler lo implementa cualquier consumidor de eventos de integración.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// ConsumerAdapter lee de Kafka y delega cada mensaje en el handler.
type ConsumerAdapter struct {
	reader  *kafka.Reader
	handler MessageHandler
	log     *zap.Logger
	backoff time.Duration
}

func NewConsumerAdapter(reader *kafka.Reader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:  reader,
		handler: handler,
		log:     log,
		backoff: time.Second,
	}
}

// Start lanza el bucle de consumo en una goroutine; termina al cancelar ctx.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	cfg := c.reader.Config()
	c.log.Info("🎧 Iniciando consumidor de Kafka...",
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.GroupID),
		zap.Strings("brokers", cfg.Brokers),
	)

	go func() {
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.log.Info("Consumidor de Kafka detenido.", zap.String("topic", cfg.Topic))
					return
				}
				c.log.Error("Error al leer mensaje de Kafka", zap.Error(err))
				// evita un bucle caliente con el broker caído
				select {
				case <-time.After(c.backoff):
				case <-ctx.Done():
					return
				}
				continue
			}

			c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
		}
	}()
}
