package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"

	// --- Importaciones compartidas ---
	sharedEvents "github.com/davicafu/cinelab/internal/shared/domain/events"
	sharedUtils "github.com/davicafu/cinelab/internal/shared/infra/utils"
)

// ActivityRecorder es lo que el consumidor necesita de la capa de aplicación.
type ActivityRecorder interface {
	Record(ctx context.Context, a movieDomain.MovieActivity) error
}

// MovieConsumer convierte los eventos de integración de películas en actividad analítica.
type MovieConsumer struct {
	recorder ActivityRecorder
	log      *zap.Logger
}

func NewMovieConsumer(recorder ActivityRecorder, logger *zap.Logger) *MovieConsumer {
	return &MovieConsumer{
		recorder: recorder,
		log:      logger,
	}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *MovieConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for movie", zap.String("key", key), zap.Error(err))
		return
	}

	eventTime := base.Timestamp
	if eventTime.IsZero() {
		eventTime = time.Now().UTC()
	}

	switch base.Type {
	case movieDomain.MovieCreated:
		sharedUtils.UnmarshalAndHandle[sharedEvents.MovieCreated](c.log, base.Data, func(evt sharedEvents.MovieCreated) {
			c.record(ctx, movieDomain.MovieActivity{
				MovieID:   evt.ID,
				UserID:    evt.CreatorID,
				EventType: base.Type,
				Title:     evt.Title,
				Reaction:  movieDomain.ReactionNone,
				EventTime: eventTime,
			})
		})

	case movieDomain.MovieUpdated:
		sharedUtils.UnmarshalAndHandle[sharedEvents.MovieUpdated](c.log, base.Data, func(evt sharedEvents.MovieUpdated) {
			c.record(ctx, movieDomain.MovieActivity{
				MovieID:   evt.ID,
				EventType: base.Type,
				Title:     evt.Title,
				Reaction:  movieDomain.ReactionNone,
				EventTime: eventTime,
			})
		})

	case movieDomain.MovieDeleted:
		sharedUtils.UnmarshalAndHandle[sharedEvents.MovieDeleted](c.log, base.Data, func(evt sharedEvents.MovieDeleted) {
			c.record(ctx, movieDomain.MovieActivity{
				MovieID:   evt.ID,
				EventType: base.Type,
				Reaction:  movieDomain.ReactionNone,
				EventTime: eventTime,
			})
		})

	case movieDomain.MovieLiked:
		sharedUtils.UnmarshalAndHandle[sharedEvents.MovieLiked](c.log, base.Data, func(evt sharedEvents.MovieLiked) {
			c.record(ctx, movieDomain.MovieActivity{
				MovieID:      evt.MovieID,
				UserID:       evt.UserID,
				EventType:    base.Type,
				Reaction:     movieDomain.Reaction(evt.IsLike),
				LikeCount:    evt.LikeCount,
				DislikeCount: evt.DislikeCount,
				EventTime:    eventTime,
			})
		})

	default:
		c.log.Warn("Unknown movie event type", zap.String("type", base.Type), zap.String("key", key))
	}
}

func (c *MovieConsumer) record(ctx context.Context, a movieDomain.MovieActivity) {
	ctxRecord, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := c.recorder.Record(ctxRecord, a); err != nil {
		c.log.Warn("Failed to record movie activity",
			zap.Int64("movie_id", a.MovieID),
			zap.String("event_type", a.EventType),
			zap.Error(err),
		)
		return
	}
	c.log.Debug("Movie activity recorded", zap.Int64("movie_id", a.MovieID), zap.String("event_type", a.EventType))
}
