package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	// --- Importaciones del dominio y compartidas ---
	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	sharedCache "github.com/davicafu/cinelab/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/cinelab/internal/shared/infra/utils"
	"go.uber.org/zap"
)

// TTL en segundos; 0 deja el del adapter (CACHE_TTL).
const movieCacheTTL = 0

// MovieService define los casos de uso del catálogo.
type MovieService struct {
	repo      movieDomain.MovieRepository
	directors movieDomain.DirectorChecker
	genres    movieDomain.GenreChecker
	files     movieDomain.MovieFileStorage
	cache     sharedCache.Cache
	log       *zap.Logger
}

func NewMovieService(
	repo movieDomain.MovieRepository,
	directors movieDomain.DirectorChecker,
	genres movieDomain.GenreChecker,
	files movieDomain.MovieFileStorage,
	cache sharedCache.Cache,
	log *zap.Logger,
) *MovieService {
	return &MovieService{
		repo:      repo,
		directors: directors,
		genres:    genres,
		files:     files,
		cache:     cache,
		log:       log,
	}
}

// ListMovies pagina por cursor. userID 0 es un visitante anónimo.
func (s *MovieService) ListMovies(ctx context.Context, filter movieDomain.MovieFilter, req sharedQuery.CursorRequest, userID int64) (*sharedQuery.Page[movieDomain.Movie], error) {
	return s.repo.List(ctx, filter, req, userID)
}

// ListRecent devuelve los últimos estrenos, cacheados bajo MOVIE_RECENT.
func (s *MovieService) ListRecent(ctx context.Context) ([]movieDomain.Movie, error) {
	if s.cache != nil {
		var cached []movieDomain.Movie
		if hit, _ := s.cache.Get(ctx, movieDomain.RecentMoviesCacheKey, &cached); hit {
			return cached, nil
		}
	}

	movies, err := s.repo.ListRecent(ctx, movieDomain.RecentLimit)
	if err != nil {
		s.log.Error("Failed to list recent movies", zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, movieDomain.RecentMoviesCacheKey, movies, movieCacheTTL, s.log)
	return movies, nil
}

// GetMovie usa cache-aside con reintentos sobre el repositorio.
func (s *MovieService) GetMovie(ctx context.Context, id int64) (*movieDomain.Movie, error) {
	// 1. Intentar obtener de la caché
	if s.cache != nil {
		var m movieDomain.Movie
		if hit, _ := s.cache.Get(ctx, movieDomain.MovieCacheKeyByID(id), &m); hit {
			return &m, nil
		}
	}

	// 2. Si es 'miss', ir al repositorio con reintentos
	var movie *movieDomain.Movie
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		movie, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, movieDomain.ErrMovieNotFound) {
			return sharedUtils.Permanent(errRetry)
		}
		return errRetry
	})

	if err != nil {
		if errors.Is(err, movieDomain.ErrMovieNotFound) {
			s.log.Warn("Movie not found", zap.Int64("movie_id", id))
		} else {
			s.log.Error("Failed to fetch movie", zap.Int64("movie_id", id), zap.Error(err))
		}
		return nil, err
	}

	// 3. Actualizar caché en segundo plano para la próxima vez
	sharedCache.AsyncCacheSet(ctx, s.cache, movieDomain.MovieCacheKeyByID(id), movie, movieCacheTTL, s.log)

	return movie, nil
}

// CreateMovie valida director y géneros, promociona el vídeo subido y da de
// alta la película con su evento de outbox.
func (s *MovieService) CreateMovie(ctx context.Context, in movieDomain.NewMovie, creatorID int64) (*movieDomain.Movie, error) {
	genreIDs := uniqueIDs(in.GenreIDs)
	if err := s.checkDirector(ctx, in.DirectorID); err != nil {
		return nil, err
	}
	if err := s.checkGenres(ctx, genreIDs); err != nil {
		return nil, err
	}

	path, err := s.files.Promote(ctx, in.MovieFileName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	movie := &movieDomain.Movie{
		Title:         in.Title,
		Detail:        in.Detail,
		Director:      movieDomain.DirectorRef{ID: in.DirectorID},
		GenreIDs:      genreIDs,
		CreatorID:     creatorID,
		MovieFilePath: path,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, movie, movieDomain.NewMovieCreatedEvent); err != nil {
		s.log.Error("Failed to create movie", zap.String("title", in.Title), zap.Error(err))
		if derr := s.files.Demote(ctx, in.MovieFileName); derr != nil {
			s.log.Warn("⚠️ Could not move file back to temp", zap.String("file", in.MovieFileName), zap.Error(derr))
		}
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, movieDomain.MovieCacheKeyByID(movie.ID), movie, movieCacheTTL, s.log)
	sharedCache.AsyncCacheDelete(ctx, s.cache, movieDomain.RecentMoviesCacheKey, s.log)

	return movie, nil
}

// UpdateMovie aplica un patch parcial; GenreIDs reemplaza el conjunto.
func (s *MovieService) UpdateMovie(ctx context.Context, id int64, patch movieDomain.MoviePatch) (*movieDomain.Movie, error) {
	if patch.DirectorID != nil {
		if err := s.checkDirector(ctx, *patch.DirectorID); err != nil {
			return nil, err
		}
	}
	if patch.GenreIDs != nil {
		patch.GenreIDs = uniqueIDs(patch.GenreIDs)
		if err := s.checkGenres(ctx, patch.GenreIDs); err != nil {
			return nil, err
		}
	}

	movie, err := s.repo.Update(ctx, id, patch, movieDomain.NewMovieUpdatedEvent)
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, movieDomain.MovieCacheKeyByID(id), s.log)
	sharedCache.AsyncCacheDelete(ctx, s.cache, movieDomain.RecentMoviesCacheKey, s.log)

	return movie, nil
}

func (s *MovieService) DeleteMovie(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id, movieDomain.NewMovieDeletedEvent(id)); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, movieDomain.MovieCacheKeyByID(id), s.log)
	sharedCache.AsyncCacheDelete(ctx, s.cache, movieDomain.RecentMoviesCacheKey, s.log)
	return nil
}

// DetachGenre reacciona al borrado de un género en su contexto.
func (s *MovieService) DetachGenre(ctx context.Context, genreID int64) error {
	movieIDs, err := s.repo.DetachGenre(ctx, genreID)
	if err != nil {
		return err
	}

	for _, id := range movieIDs {
		sharedCache.AsyncCacheDelete(ctx, s.cache, movieDomain.MovieCacheKeyByID(id), s.log)
	}
	if len(movieIDs) > 0 {
		sharedCache.AsyncCacheDelete(ctx, s.cache, movieDomain.RecentMoviesCacheKey, s.log)
	}
	s.log.Info("Genre detached from movies", zap.Int64("genre_id", genreID), zap.Int("movies", len(movieIDs)))
	return nil
}

// ToggleLike devuelve la reacción resultante: nil si se ha retirado.
func (s *MovieService) ToggleLike(ctx context.Context, movieID, userID int64, isLike bool) (*bool, error) {
	res, err := s.repo.ToggleLike(ctx, movieID, userID, isLike, movieDomain.NewMovieLikedEvent)
	if err != nil {
		return nil, err
	}

	// Los contadores cacheados ya no valen
	sharedCache.AsyncCacheDelete(ctx, s.cache, movieDomain.MovieCacheKeyByID(movieID), s.log)
	return res.IsLike, nil
}

// UploadMovieFile deja el vídeo en temp hasta que se cree la película.
func (s *MovieService) UploadMovieFile(ctx context.Context, r io.Reader) (string, error) {
	name, err := s.files.SaveTemp(ctx, r)
	if err != nil {
		s.log.Error("Failed to store uploaded file", zap.Error(err))
		return "", err
	}
	return name, nil
}

// --- Helpers ---

func (s *MovieService) checkDirector(ctx context.Context, id int64) error {
	ok, err := s.directors.DirectorExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", movieDomain.ErrDirectorNotFound, id)
	}
	return nil
}

func (s *MovieService) checkGenres(ctx context.Context, ids []int64) error {
	missing, err := s.genres.MissingGenres(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", movieDomain.ErrGenreNotFound, missing)
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
