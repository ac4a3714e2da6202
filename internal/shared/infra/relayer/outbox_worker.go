package relayer

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedDomainEvents "github.com/davicafu/cinelab/internal/shared/domain/events"
	sharedBus "github.com/davicafu/cinelab/internal/shared/infra/platform/bus"
	"github.com/davicafu/cinelab/pkg/metrics"
	"go.uber.org/zap"
)

// unknownTopic etiqueta en métricas los eventos que no están en el registro.
const unknownTopic = "unknown"

// Worker publica los eventos pendientes del outbox en el bus de su topic.
type Worker struct {
	repo          sharedDomain.OutboxRepository
	publishers    map[string]sharedBus.EventBus // por topic
	eventRegistry map[string]sharedDomainEvents.EventMetadata
	interval      time.Duration
	batchSize     int
	log           *zap.Logger
}

func NewOutboxWorker(
	repo sharedDomain.OutboxRepository,
	publishers map[string]sharedBus.EventBus,
	registry map[string]sharedDomainEvents.EventMetadata,
	interval time.Duration,
	batchSize int,
	log *zap.Logger,
) *Worker {
	return &Worker{
		repo:          repo,
		publishers:    publishers,
		eventRegistry: registry,
		interval:      interval,
		batchSize:     batchSize,
		log:           log,
	}
}

// Start bloquea haciendo polling hasta que se cancela ctx.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("🚀 Outbox worker iniciado", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("🛑 Outbox worker detenido.")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

func (w *Worker) ProcessBatch(ctx context.Context) {
	events, err := w.repo.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("⚠️ Error al obtener eventos pendientes", zap.Error(err))
		return
	}
	if len(events) > 0 {
		w.log.Debug(fmt.Sprintf("📬 %d eventos encontrados para procesar", len(events)))
	}

	for _, evt := range events {
		w.publishAndMark(ctx, evt)
	}
}

func (w *Worker) publishAndMark(ctx context.Context, evt sharedDomain.OutboxEvent) {
	// 1. El registro dice a qué tipo decodificar y a qué topic va
	metadata, ok := w.eventRegistry[evt.EventType]
	if !ok {
		w.discard(ctx, evt, unknownTopic, "Tipo de evento desconocido en registro", nil)
		return
	}
	publisher, ok := w.publishers[metadata.Topic]
	if !ok {
		w.log.Error("No hay publisher para el topic", zap.String("topic", metadata.Topic), zap.String("event_type", evt.EventType))
		return
	}

	// Validamos el payload contra el contrato antes de publicarlo
	typed := reflect.New(metadata.Type).Interface()
	payloadBytes, err := json.Marshal(evt.Payload)
	if err == nil {
		err = json.Unmarshal(payloadBytes, typed)
	}
	if err != nil {
		w.discard(ctx, evt, metadata.Topic, "Error al decodificar payload del evento", err)
		return
	}
	data, err := json.Marshal(typed)
	if err != nil {
		w.log.Error("Error al serializar el evento", zap.String("event_id", evt.ID.String()), zap.Error(err))
		return
	}

	integration := sharedDomainEvents.IntegrationEvent{
		Type:        evt.EventType,
		Timestamp:   evt.CreatedAt,
		AggregateID: evt.AggregateID,
		Data:        data,
	}

	// 2. Publicar
	if err := publisher.Publish(ctx, integration); err != nil {
		metrics.OutboxPublishedTotal.WithLabelValues(metadata.Topic, metrics.OutcomeFailed).Inc()
		w.log.Warn("⚠️ No se pudo publicar evento",
			zap.String("event_id", evt.ID.String()),
			zap.Error(err),
		)
		return // sin marcar: se reintenta en el siguiente tick
	}

	metrics.OutboxPublishedTotal.WithLabelValues(metadata.Topic, metrics.OutcomePublished).Inc()

	// 3. Marcar como procesado
	if err := w.repo.MarkOutboxProcessed(ctx, evt.ID); err != nil {
		w.log.Warn("⚠️ No se pudo marcar evento como procesado",
			zap.String("event_id", evt.ID.String()),
			zap.Error(err),
		)
	} else {
		w.log.Info("✅ Evento publicado y marcado",
			zap.String("event_id", evt.ID.String()),
			zap.String("event_type", evt.EventType),
		)
	}
}

// discard marca como procesado un evento que nunca podrá publicarse, para que no
// vuelva en cada tick ocupando sitio en el lote.
func (w *Worker) discard(ctx context.Context, evt sharedDomain.OutboxEvent, topic, reason string, cause error) {
	metrics.OutboxPublishedTotal.WithLabelValues(topic, metrics.OutcomeFailed).Inc()
	w.log.Error(reason,
		zap.String("event_id", evt.ID.String()),
		zap.String("event_type", evt.EventType),
		zap.Error(cause),
	)

	if err := w.repo.MarkOutboxProcessed(ctx, evt.ID); err != nil {
		w.log.Warn("⚠️ No se pudo descartar evento", zap.String("event_id", evt.ID.String()), zap.Error(err))
	}
}
