package domain

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedEvents "github.com/davicafu/cinelab/internal/shared/domain/events"
)

type Genre struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (g Genre) PartitionKey() string {
	return strconv.FormatInt(g.ID, 10)
}

func (g Genre) CursorValue(column string) (any, bool) {
	switch column {
	case "id":
		return g.ID, true
	case "name":
		return g.Name, true
	}
	return nil, false
}

// NormalizeName recorta espacios; el nombre es único tal cual se guarda.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidGenre
	}
	return name, nil
}

// ---------- Errores de dominio ----------
var (
	ErrGenreNotFound      = errors.New("genre not found")
	ErrGenreAlreadyExists = errors.New("genre with this name already exists")
	ErrInvalidGenre       = errors.New("genre name is required")
)

// El ID de un género nuevo solo se conoce dentro de la transacción.
type GenreEventFactory func(g *Genre) sharedDomain.OutboxEvent

// ---------- Interfaces (Ports) ----------

// GenreRepository escribe el evento de outbox en la misma transacción que el género.
type GenreRepository interface {
	// Devuelve ErrGenreAlreadyExists si el nombre está repetido.
	Create(ctx context.Context, g *Genre, newEvent GenreEventFactory) error
	GetByID(ctx context.Context, id int64) (*Genre, error)
	Rename(ctx context.Context, id int64, name string, newEvent GenreEventFactory) (*Genre, error)
	DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error
	// List devuelve todos los géneros ordenados por id.
	List(ctx context.Context) ([]Genre, error)
	// ExistingIDs devuelve qué ids de la lista existen.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// ---------- Eventos ----------

const (
	GenreCreated = "genre.created"
	GenreUpdated = "genre.updated"
	GenreDeleted = "genre.deleted"
)

const (
	GenreTopic     = "genre"
	genreAggregate = "genre"
)

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		GenreCreated: {Type: reflect.TypeOf(sharedEvents.GenreChanged{}), Topic: GenreTopic},
		GenreUpdated: {Type: reflect.TypeOf(sharedEvents.GenreChanged{}), Topic: GenreTopic},
		GenreDeleted: {Type: reflect.TypeOf(sharedEvents.GenreChanged{}), Topic: GenreTopic},
	}
}

func NewGenreCreatedEvent(g *Genre) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(genreAggregate, g.PartitionKey(), GenreCreated, sharedEvents.GenreChanged{ID: g.ID, Name: g.Name})
}

func NewGenreUpdatedEvent(g *Genre) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(genreAggregate, g.PartitionKey(), GenreUpdated, sharedEvents.GenreChanged{ID: g.ID, Name: g.Name})
}

func NewGenreDeletedEvent(id int64) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(genreAggregate, strconv.FormatInt(id, 10), GenreDeleted, sharedEvents.GenreChanged{ID: id})
}
