package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/cinelab/internal/genre/domain"
	"github.com/davicafu/cinelab/internal/genre/infra/outbound/db/sqldb"
	sharedDB "github.com/davicafu/cinelab/internal/shared/infra/platform/db"
	"github.com/davicafu/cinelab/tests/mocks"
)

func newService(t *testing.T) (*GenreService, *mocks.DummyCache) {
	t.Helper()
	ctx := context.Background()
	conn, err := sharedDB.Open(ctx, sharedDB.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, sharedDB.InitSchema(ctx, conn, sharedDB.SQLite))

	cache := mocks.NewDummyCache()
	return NewGenreService(sqldb.NewGenreRepoSQL(conn, sharedDB.SQLite), cache, zap.NewNop()), cache
}

func TestCreateGenre(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	g, err := s.CreateGenre(ctx, "  Noir ")
	require.NoError(t, err)
	assert.Equal(t, "Noir", g.Name)

	_, err = s.CreateGenre(ctx, "Noir")
	assert.ErrorIs(t, err, domain.ErrGenreAlreadyExists)

	_, err = s.CreateGenre(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidGenre)
}

func TestListGenres_CachedAndInvalidated(t *testing.T) {
	s, cache := newService(t)
	ctx := context.Background()

	_, err := s.CreateGenre(ctx, "Drama")
	require.NoError(t, err)

	genres, err := s.ListGenres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Eventually(t, func() bool { return cache.Has(genreListCacheKey) }, time.Second, 10*time.Millisecond)

	_, err = s.CreateGenre(ctx, "Comedy")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return !cache.Has(genreListCacheKey) }, time.Second, 10*time.Millisecond)

	genres, err = s.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 2)
}

func TestMissingGenres(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	a, err := s.CreateGenre(ctx, "Action")
	require.NoError(t, err)
	b, err := s.CreateGenre(ctx, "Thriller")
	require.NoError(t, err)

	missing, err := s.MissingGenres(ctx, []int64{a.ID, 77, b.ID, 78})
	require.NoError(t, err)
	assert.Equal(t, []int64{77, 78}, missing)

	missing, err = s.MissingGenres(ctx, []int64{a.ID, b.ID})
	require.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = s.MissingGenres(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestRenameAndDeleteGenre(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	g, err := s.CreateGenre(ctx, "Sci-fi")
	require.NoError(t, err)

	renamed, err := s.RenameGenre(ctx, g.ID, "Sci-Fi")
	require.NoError(t, err)
	assert.Equal(t, "Sci-Fi", renamed.Name)

	require.NoError(t, s.DeleteGenre(ctx, g.ID))
	_, err = s.GetGenre(ctx, g.ID)
	assert.ErrorIs(t, err, domain.ErrGenreNotFound)
}
