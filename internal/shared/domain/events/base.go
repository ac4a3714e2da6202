package events

import (
	"encoding/json"
	"reflect"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type        string          `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	AggregateID string          `json:"aggregate_id"`
	Data        json.RawMessage `json:"data"` // contenido específico del evento
}

// PartitionKey mantiene en orden los eventos de un mismo agregado.
func (e IntegrationEvent) PartitionKey() string {
	return e.AggregateID
}

func (e IntegrationEvent) EventType() string {
	return e.Type
}

// EventMetadata indica cómo decodificar el payload del outbox y a qué topic va.
type EventMetadata struct {
	Type  reflect.Type
	Topic string
}

// MergeRegistries junta los registros de cada contexto.
func MergeRegistries(registries ...map[string]EventMetadata) map[string]EventMetadata {
	out := make(map[string]EventMetadata)
	for _, r := range registries {
		for k, v := range r {
			out[k] = v
		}
	}
	return out
}
