package application

import (
	"context"
	"time"

	"github.com/davicafu/cinelab/internal/genre/domain"
	sharedCache "github.com/davicafu/cinelab/internal/shared/infra/platform/cache"
	"go.uber.org/zap"
)

// El listado completo es pequeño y se lee en cada alta de película.
const genreListCacheKey = "GENRE_ALL"

// GenreService define los casos de uso de géneros.
type GenreService struct {
	repo  domain.GenreRepository
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewGenreService(repo domain.GenreRepository, cache sharedCache.Cache, log *zap.Logger) *GenreService {
	return &GenreService{repo: repo, cache: cache, log: log}
}

func (s *GenreService) CreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g := &domain.Genre{Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, g, domain.NewGenreCreatedEvent); err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, genreListCacheKey, s.log)
	s.log.Info("Genre created", zap.Int64("genre_id", g.ID), zap.String("name", g.Name))
	return g, nil
}

func (s *GenreService) GetGenre(ctx context.Context, id int64) (*domain.Genre, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *GenreService) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	if s.cache != nil {
		var cached []domain.Genre
		if hit, _ := s.cache.Get(ctx, genreListCacheKey, &cached); hit {
			return cached, nil
		}
	}

	genres, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, genreListCacheKey, genres, 0, s.log)
	return genres, nil
}

func (s *GenreService) RenameGenre(ctx context.Context, id int64, name string) (*domain.Genre, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	g, err := s.repo.Rename(ctx, id, name, domain.NewGenreUpdatedEvent)
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, genreListCacheKey, s.log)
	return g, nil
}

func (s *GenreService) DeleteGenre(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id, domain.NewGenreDeletedEvent(id)); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, genreListCacheKey, s.log)
	return nil
}

// MissingGenres sirve al contexto de películas: devuelve los ids que no existen.
func (s *GenreService) MissingGenres(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	existing, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
