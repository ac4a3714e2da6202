package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	genreDomain "github.com/davicafu/cinelab/internal/genre/domain"

	// --- Importaciones compartidas ---
	sharedEvents "github.com/davicafu/cinelab/internal/shared/domain/events"
	sharedUtils "github.com/davicafu/cinelab/internal/shared/infra/utils"
)

// GenreDetacher es lo que el consumidor necesita del servicio de películas.
type GenreDetacher interface {
	DetachGenre(ctx context.Context, genreID int64) error
}

// GenreConsumer mantiene movie_genres al día con el contexto de géneros.
type GenreConsumer struct {
	movies GenreDetacher
	log    *zap.Logger
}

func NewGenreConsumer(movies GenreDetacher, logger *zap.Logger) *GenreConsumer {
	return &GenreConsumer{movies: movies, log: logger}
}

func (c *GenreConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for genre", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case genreDomain.GenreDeleted:
		sharedUtils.UnmarshalAndHandle[sharedEvents.GenreChanged](c.log, base.Data, func(evt sharedEvents.GenreChanged) {
			ctxDetach, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()

			// Repetir el borrado es inocuo: no queda nada que quitar.
			if err := c.movies.DetachGenre(ctxDetach, evt.ID); err != nil {
				c.log.Error("Failed to detach deleted genre", zap.Int64("genre_id", evt.ID), zap.Error(err))
			}
		})

	case genreDomain.GenreCreated, genreDomain.GenreUpdated:
		// Las películas solo guardan el id.

	default:
		c.log.Warn("Unknown genre event type", zap.String("type", base.Type), zap.String("key", key))
	}
}
