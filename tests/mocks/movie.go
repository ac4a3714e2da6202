package mocks

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	"github.com/stretchr/testify/mock"
)

type likeKey struct{ movieID, userID int64 }

// InMemoryMovieRepo simula MovieRepository con outbox incluido.
type InMemoryMovieRepo struct {
	Movies  map[int64]*movieDomain.Movie
	Likes   map[likeKey]bool
	Users   map[int64]bool
	Outbox  []sharedDomain.OutboxEvent
	Calls   map[string]int
	LastReq sharedQuery.CursorRequest
	nextID  int64
	mu      sync.Mutex
}

func NewInMemoryMovieRepo() *InMemoryMovieRepo {
	return &InMemoryMovieRepo{
		Movies: make(map[int64]*movieDomain.Movie),
		Likes:  make(map[likeKey]bool),
		Users:  make(map[int64]bool),
		Outbox: []sharedDomain.OutboxEvent{},
		Calls:  make(map[string]int),
	}
}

func (r *InMemoryMovieRepo) Create(ctx context.Context, m *movieDomain.Movie, newEvent movieDomain.MovieEventFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["Create"]++
	for _, existing := range r.Movies {
		if existing.Title == m.Title {
			return movieDomain.ErrMovieAlreadyExists
		}
	}
	r.nextID++
	m.ID = r.nextID
	stored := *m
	r.Movies[m.ID] = &stored
	r.Outbox = append(r.Outbox, newEvent(m))
	return nil
}

func (r *InMemoryMovieRepo) Update(ctx context.Context, id int64, patch movieDomain.MoviePatch, newEvent movieDomain.MovieEventFactory) (*movieDomain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Movies[id]
	if !ok {
		return nil, movieDomain.ErrMovieNotFound
	}
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Detail != nil {
		m.Detail = *patch.Detail
	}
	if patch.DirectorID != nil {
		m.Director = movieDomain.DirectorRef{ID: *patch.DirectorID}
	}
	if patch.GenreIDs != nil {
		m.GenreIDs = patch.GenreIDs
	}
	m.UpdatedAt = time.Now().UTC()
	out := *m
	r.Outbox = append(r.Outbox, newEvent(&out))
	return &out, nil
}

func (r *InMemoryMovieRepo) DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Movies[id]; !ok {
		return movieDomain.ErrMovieNotFound
	}
	delete(r.Movies, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryMovieRepo) DetachGenre(ctx context.Context, genreID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected []int64
	for id, m := range r.Movies {
		kept := m.GenreIDs[:0:0]
		for _, gid := range m.GenreIDs {
			if gid != genreID {
				kept = append(kept, gid)
			}
		}
		if len(kept) != len(m.GenreIDs) {
			m.GenreIDs = kept
			affected = append(affected, id)
		}
	}
	sort.Slice(affected, func(i, j int) bool { return affected[i] < affected[j] })
	return affected, nil
}

func (r *InMemoryMovieRepo) GetByID(ctx context.Context, id int64) (*movieDomain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["GetByID"]++
	m, ok := r.Movies[id]
	if !ok {
		return nil, movieDomain.ErrMovieNotFound
	}
	out := *m
	return &out, nil
}

// List no pagina: devuelve todo lo que casa con el título, id DESC, en una página.
func (r *InMemoryMovieRepo) List(ctx context.Context, filter movieDomain.MovieFilter, req sharedQuery.CursorRequest, userID int64) (*sharedQuery.Page[movieDomain.Movie], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LastReq = req

	data := []movieDomain.Movie{}
	for _, m := range r.Movies {
		if filter.Title != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(filter.Title)) {
			continue
		}
		out := *m
		if v, ok := r.Likes[likeKey{m.ID, userID}]; ok && userID != 0 {
			out.LikeStatus = &v
		}
		data = append(data, out)
	}
	sort.Slice(data, func(i, j int) bool { return data[i].ID > data[j].ID })
	return &sharedQuery.Page[movieDomain.Movie]{Data: data}, nil
}

func (r *InMemoryMovieRepo) ListRecent(ctx context.Context, limit int) ([]movieDomain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["ListRecent"]++

	movies := []movieDomain.Movie{}
	for _, m := range r.Movies {
		movies = append(movies, *m)
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].CreatedAt.After(movies[j].CreatedAt) })
	if len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}

func (r *InMemoryMovieRepo) ToggleLike(ctx context.Context, movieID, userID int64, isLike bool, newEvent movieDomain.LikeEventFactory) (movieDomain.LikeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Movies[movieID]
	if !ok {
		return movieDomain.LikeResult{}, movieDomain.ErrMovieNotFound
	}
	if !r.Users[userID] {
		return movieDomain.LikeResult{}, movieDomain.ErrUnknownUser
	}

	key := likeKey{movieID, userID}
	var current *bool
	if v, ok := r.Likes[key]; ok {
		current = &v
	}
	next := m.ToggleReaction(current, isLike)
	if next == nil {
		delete(r.Likes, key)
	} else {
		r.Likes[key] = *next
	}

	res := movieDomain.LikeResult{MovieID: movieID, UserID: userID, IsLike: next, LikeCount: m.LikeCount, DislikeCount: m.DislikeCount}
	r.Outbox = append(r.Outbox, newEvent(res))
	return res, nil
}

var _ movieDomain.MovieRepository = (*InMemoryMovieRepo)(nil)

// --- Puertos hacia director y género ---

// CatalogStub responde a las comprobaciones de director y géneros.
type CatalogStub struct {
	Directors map[int64]bool
	Genres    map[int64]bool
}

func (c CatalogStub) DirectorExists(ctx context.Context, id int64) (bool, error) {
	return c.Directors[id], nil
}

func (c CatalogStub) MissingGenres(ctx context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if !c.Genres[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

var (
	_ movieDomain.DirectorChecker = CatalogStub{}
	_ movieDomain.GenreChecker    = CatalogStub{}
)

// --- Almacenamiento de ficheros ---

type MockMovieFileStorage struct {
	mock.Mock
}

func (m *MockMovieFileStorage) SaveTemp(ctx context.Context, r io.Reader) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

func (m *MockMovieFileStorage) Promote(ctx context.Context, fileName string) (string, error) {
	args := m.Called(ctx, fileName)
	return args.String(0), args.Error(1)
}

func (m *MockMovieFileStorage) Demote(ctx context.Context, fileName string) error {
	args := m.Called(ctx, fileName)
	return args.Error(0)
}

var _ movieDomain.MovieFileStorage = (*MockMovieFileStorage)(nil)

// --- Analítica ---

type MockMovieAnalyticsRepo struct {
	mock.Mock
}

func (m *MockMovieAnalyticsRepo) LogBatch(ctx context.Context, activities []movieDomain.MovieActivity) error {
	args := m.Called(ctx, activities)
	return args.Error(0)
}

func (m *MockMovieAnalyticsRepo) GetDailyTrend(ctx context.Context, start, end time.Time) ([]movieDomain.DailyMovieTrend, error) {
	args := m.Called(ctx, start, end)
	trends, _ := args.Get(0).([]movieDomain.DailyMovieTrend)
	return trends, args.Error(1)
}

var _ movieDomain.MovieAnalyticsRepository = (*MockMovieAnalyticsRepo)(nil)
