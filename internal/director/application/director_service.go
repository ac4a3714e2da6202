package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/davicafu/cinelab/internal/director/domain"
	sharedCache "github.com/davicafu/cinelab/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	"go.uber.org/zap"
)

const directorCacheTTL = 0

// DirectorService define los casos de uso de directores.
type DirectorService struct {
	repo  domain.DirectorRepository
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewDirectorService(repo domain.DirectorRepository, cache sharedCache.Cache, log *zap.Logger) *DirectorService {
	return &DirectorService{repo: repo, cache: cache, log: log}
}

func (s *DirectorService) CreateDirector(ctx context.Context, name string, dob time.Time, nationality string) (*domain.Director, error) {
	now := time.Now().UTC()
	d := &domain.Director{
		Name:        strings.TrimSpace(name),
		DOB:         dob.UTC(),
		Nationality: strings.TrimSpace(nationality),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("Failed to create director", zap.String("name", d.Name), zap.Error(err))
		return nil, err
	}

	s.log.Info("Director created", zap.Int64("director_id", d.ID))
	return d, nil
}

// GetDirector usa cache-aside.
func (s *DirectorService) GetDirector(ctx context.Context, id int64) (*domain.Director, error) {
	if s.cache != nil {
		var d domain.Director
		if hit, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &d); hit {
			return &d, nil
		}
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(id), d, directorCacheTTL, s.log)
	return d, nil
}

// DirectorExists sirve al contexto de películas para validar el director.
func (s *DirectorService) DirectorExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetDirector(ctx, id)
	if errors.Is(err, domain.ErrDirectorNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *DirectorService) ListDirectors(ctx context.Context, filter domain.DirectorFilter, req sharedQuery.CursorRequest) (*sharedQuery.Page[domain.Director], error) {
	return s.repo.List(ctx, filter, req)
}

func (s *DirectorService) UpdateDirector(ctx context.Context, id int64, patch domain.DirectorPatch) (*domain.Director, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.ErrInvalidDirector
		}
		patch.Name = &name
	}
	if patch.Nationality != nil {
		nat := strings.TrimSpace(*patch.Nationality)
		if nat == "" {
			return nil, domain.ErrInvalidDirector
		}
		patch.Nationality = &nat
	}
	if patch.DOB != nil {
		if patch.DOB.IsZero() {
			return nil, domain.ErrInvalidDirector
		}
		dob := patch.DOB.UTC()
		patch.DOB = &dob
	}

	d, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, domain.CacheKeyByID(id), s.log)
	return d, nil
}

func (s *DirectorService) DeleteDirector(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, domain.CacheKeyByID(id), s.log)
	return nil
}
