package domain

import (
	"reflect"
	"strconv"
	"time"

	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedEvents "github.com/davicafu/cinelab/internal/shared/domain/events"
)

const (
	MovieCreated = "movie.created"
	MovieUpdated = "movie.updated"
	MovieDeleted = "movie.deleted"
	MovieLiked   = "movie.liked"
)

const (
	MovieTopic     = "movie"
	movieAggregate = "movie"
)

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		MovieCreated: {Type: reflect.TypeOf(sharedEvents.MovieCreated{}), Topic: MovieTopic},
		MovieUpdated: {Type: reflect.TypeOf(sharedEvents.MovieUpdated{}), Topic: MovieTopic},
		MovieDeleted: {Type: reflect.TypeOf(sharedEvents.MovieDeleted{}), Topic: MovieTopic},
		MovieLiked:   {Type: reflect.TypeOf(sharedEvents.MovieLiked{}), Topic: MovieTopic},
	}
}

// --- Eventos de outbox ---

func NewMovieCreatedEvent(m *Movie) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(movieAggregate, m.PartitionKey(), MovieCreated, sharedEvents.MovieCreated{
		ID:         m.ID,
		Title:      m.Title,
		DirectorID: m.Director.ID,
		GenreIDs:   m.GenreIDs,
		CreatorID:  m.CreatorID,
		CreatedAt:  m.CreatedAt,
	})
}

func NewMovieUpdatedEvent(m *Movie) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(movieAggregate, m.PartitionKey(), MovieUpdated, sharedEvents.MovieUpdated{
		ID:         m.ID,
		Title:      m.Title,
		DirectorID: m.Director.ID,
		GenreIDs:   m.GenreIDs,
		UpdatedAt:  m.UpdatedAt,
	})
}

func NewMovieDeletedEvent(id int64) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(movieAggregate, strconv.FormatInt(id, 10), MovieDeleted, sharedEvents.MovieDeleted{ID: id})
}

func NewMovieLikedEvent(r LikeResult) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(movieAggregate, strconv.FormatInt(r.MovieID, 10), MovieLiked, sharedEvents.MovieLiked{
		MovieID:      r.MovieID,
		UserID:       r.UserID,
		IsLike:       r.IsLike,
		LikeCount:    r.LikeCount,
		DislikeCount: r.DislikeCount,
		At:           time.Now().UTC(),
	})
}

// Reaction traduce el puntero de like a la etiqueta de analítica.
func Reaction(isLike *bool) string {
	switch {
	case isLike == nil:
		return ReactionNone
	case *isLike:
		return ReactionLike
	default:
		return ReactionDislike
	}
}
