package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

var (
	ErrMovieNotFound      = errors.New("movie not found")
	ErrMovieAlreadyExists = errors.New("movie with this title already exists")
	ErrDirectorNotFound   = errors.New("director not found")
	ErrGenreNotFound      = errors.New("genre not found")
	ErrUnknownUser        = errors.New("user does not exist")
	ErrMovieFileNotFound  = errors.New("uploaded movie file not found")
	ErrInvalidMovieFile   = errors.New("invalid movie file")
	ErrAnalyticsDisabled  = errors.New("movie analytics are not configured")
)

// RecentLimit es el tamaño del listado de estrenos.
const RecentLimit = 10

// MovieFilter son los filtros del listado además de la paginación.
type MovieFilter struct {
	Title      string
	DirectorID int64
}

func (f MovieFilter) Criteria() sharedDomain.Criteria {
	return sharedDomain.And(TitleContainsCriteria(f.Title), DirectorCriteria{ID: f.DirectorID})
}

// NewMovie es lo que llega para dar de alta una película.
type NewMovie struct {
	Title         string
	Detail        string
	DirectorID    int64
	GenreIDs      []int64
	MovieFileName string
}

// MoviePatch: los nil no se tocan. GenreIDs no nil reemplaza el conjunto entero.
type MoviePatch struct {
	Title      *string
	Detail     *string
	DirectorID *int64
	GenreIDs   []int64
}

// LikeResult es el estado tras un toggle.
type LikeResult struct {
	MovieID      int64
	UserID       int64
	IsLike       *bool
	LikeCount    int
	DislikeCount int
}

// El ID de una película nueva solo se conoce dentro de la transacción,
// por eso el repositorio recibe cómo construir el evento en vez del evento.
type (
	MovieEventFactory func(m *Movie) sharedDomain.OutboxEvent
	LikeEventFactory  func(r LikeResult) sharedDomain.OutboxEvent
)

// --- Repositorio de Movies ---
type MovieRepository interface {
	// Devuelve ErrMovieAlreadyExists si el título está repetido.
	Create(ctx context.Context, m *Movie, newEvent MovieEventFactory) error
	// Devuelve ErrMovieNotFound si no existe.
	Update(ctx context.Context, id int64, patch MoviePatch, newEvent MovieEventFactory) (*Movie, error)
	DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id int64) (*Movie, error)
	// userID 0 = anónimo, sin likeStatus.
	List(ctx context.Context, filter MovieFilter, req sharedQuery.CursorRequest, userID int64) (*sharedQuery.Page[Movie], error)
	ListRecent(ctx context.Context, limit int) ([]Movie, error)
	// Devuelve ErrMovieNotFound o ErrUnknownUser.
	ToggleLike(ctx context.Context, movieID, userID int64, isLike bool, newEvent LikeEventFactory) (LikeResult, error)
	// DetachGenre quita el género de todas las películas y devuelve sus ids.
	DetachGenre(ctx context.Context, genreID int64) ([]int64, error)
}

// --- Puertos hacia otros contextos ---

type DirectorChecker interface {
	DirectorExists(ctx context.Context, id int64) (bool, error)
}

type GenreChecker interface {
	// MissingGenres devuelve los ids que no existen.
	MissingGenres(ctx context.Context, ids []int64) ([]int64, error)
}

// MovieFileStorage guarda los vídeos subidos. Los ficheros entran en una
// carpeta temporal y se promocionan al crear la película.
type MovieFileStorage interface {
	SaveTemp(ctx context.Context, r io.Reader) (string, error)
	// Promote devuelve la ruta definitiva relativa a la raíz de medios.
	Promote(ctx context.Context, fileName string) (string, error)
	// Demote deshace un Promote cuando falla el alta.
	Demote(ctx context.Context, fileName string) error
}

// --- Analítica ---

// MovieActivity es una fila del log de actividad.
type MovieActivity struct {
	MovieID      int64
	UserID       int64
	EventType    string
	Title        string
	Reaction     string // like | dislike | none
	LikeCount    int
	DislikeCount int
	EventTime    time.Time
}

const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
	ReactionNone    = "none"
)

// DailyMovieTrend agrega la actividad por día.
type DailyMovieTrend struct {
	Day      time.Time `json:"day"`
	Created  int       `json:"created"`
	Deleted  int       `json:"deleted"`
	Likes    int       `json:"likes"`
	Dislikes int       `json:"dislikes"`
}

type MovieAnalyticsRepository interface {
	LogBatch(ctx context.Context, activities []MovieActivity) error
	GetDailyTrend(ctx context.Context, start, end time.Time) ([]DailyMovieTrend, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

const RecentMoviesCacheKey = "MOVIE_RECENT"

func MovieCacheKeyByID(id int64) string {
	return fmt.Sprintf("movie:id:%d", id)
}
