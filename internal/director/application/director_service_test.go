package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/cinelab/internal/director/domain"
	"github.com/davicafu/cinelab/tests/mocks"
)

var dob = time.Date(1970, 7, 30, 0, 0, 0, 0, time.UTC)

func TestCreateDirector(t *testing.T) {
	repo := new(mocks.MockDirectorRepo)
	s := NewDirectorService(repo, nil, zap.NewNop())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Director) bool {
		return d.Name == "Christopher Nolan" && d.Nationality == "UK"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Director).ID = 5
	}).Return(nil).Once()

	d, err := s.CreateDirector(context.Background(), "  Christopher Nolan ", dob, "UK")
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.ID)
	assert.False(t, d.CreatedAt.IsZero())

	_, err = s.CreateDirector(context.Background(), "", dob, "UK")
	assert.ErrorIs(t, err, domain.ErrInvalidDirector)
	_, err = s.CreateDirector(context.Background(), "x", time.Time{}, "UK")
	assert.ErrorIs(t, err, domain.ErrInvalidDirector)

	repo.AssertExpectations(t)
}

func TestGetDirector_CacheAside(t *testing.T) {
	repo := new(mocks.MockDirectorRepo)
	cache := mocks.NewDummyCache()
	s := NewDirectorService(repo, cache, zap.NewNop())
	ctx := context.Background()

	stored := &domain.Director{ID: 3, Name: "Agnès Varda", DOB: dob, Nationality: "FR"}
	repo.On("GetByID", mock.Anything, int64(3)).Return(stored, nil).Once()

	got, err := s.GetDirector(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Agnès Varda", got.Name)

	assert.Eventually(t, func() bool { return cache.Has(domain.CacheKeyByID(3)) }, time.Second, 10*time.Millisecond)

	again, err := s.GetDirector(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Agnès Varda", again.Name)
	repo.AssertExpectations(t)
}

func TestDirectorExists(t *testing.T) {
	repo := new(mocks.MockDirectorRepo)
	s := NewDirectorService(repo, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Director{ID: 1}, nil)
	repo.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrDirectorNotFound)
	repo.On("GetByID", mock.Anything, int64(3)).Return(nil, errors.New("db down"))

	ok, err := s.DirectorExists(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DirectorExists(ctx, 2)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DirectorExists(ctx, 3)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestUpdateDirector_Validates(t *testing.T) {
	repo := new(mocks.MockDirectorRepo)
	s := NewDirectorService(repo, mocks.NewDummyCache(), zap.NewNop())
	ctx := context.Background()

	blank := "  "
	_, err := s.UpdateDirector(ctx, 1, domain.DirectorPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidDirector)

	name := " Bong Joon-ho "
	repo.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(p domain.DirectorPatch) bool {
		return p.Name != nil && *p.Name == "Bong Joon-ho"
	})).Return(&domain.Director{ID: 1, Name: "Bong Joon-ho"}, nil).Once()

	d, err := s.UpdateDirector(ctx, 1, domain.DirectorPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bong Joon-ho", d.Name)
	repo.AssertExpectations(t)
}

func TestDeleteDirector_HasMovies(t *testing.T) {
	repo := new(mocks.MockDirectorRepo)
	s := NewDirectorService(repo, nil, zap.NewNop())
	repo.On("DeleteByID", mock.Anything, int64(9)).Return(domain.ErrDirectorHasMovies)

	assert.ErrorIs(t, s.DeleteDirector(context.Background(), 9), domain.ErrDirectorHasMovies)
}
