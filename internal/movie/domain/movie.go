package domain

import (
	"strconv"
	"time"

	sharedBus "github.com/davicafu/cinelab/internal/shared/infra/platform/bus"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

// DirectorRef es la vista del director que viaja con la película.
type DirectorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Detail        string      `json:"detail"`
	Director      DirectorRef `json:"director"`
	GenreIDs      []int64     `json:"genreIds"`
	CreatorID     int64       `json:"creatorId,omitempty"`
	LikeCount     int         `json:"likeCount"`
	DislikeCount  int         `json:"dislikeCount"`
	MovieFilePath string      `json:"movieFilePath"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`

	// Solo se rellena en listados con usuario autenticado.
	LikeStatus *bool `json:"likeStatus,omitempty"`
}

func (m Movie) PartitionKey() string {
	return strconv.FormatInt(m.ID, 10)
}

// CursorValue expone las columnas por las que se puede ordenar un listado.
func (m Movie) CursorValue(column string) (any, bool) {
	switch column {
	case "id":
		return m.ID, true
	case "title":
		return m.Title, true
	case "like_count":
		return int64(m.LikeCount), true
	case "dislike_count":
		return int64(m.DislikeCount), true
	case "director_id":
		return m.Director.ID, true
	case "created_at":
		return m.CreatedAt, true
	}
	return nil, false
}

// --- Reacciones ---

// ToggleReaction aplica un like/dislike sobre la reacción actual del usuario
// y ajusta los contadores. Sin reacción previa se crea, con el mismo valor se
// retira y con el contrario se invierte. Devuelve la reacción resultante.
func (m *Movie) ToggleReaction(current *bool, isLike bool) *bool {
	switch {
	case current == nil:
		m.bump(isLike, 1)
		return &isLike
	case *current == isLike:
		m.bump(isLike, -1)
		return nil
	default:
		m.bump(*current, -1)
		m.bump(isLike, 1)
		return &isLike
	}
}

func (m *Movie) bump(isLike bool, delta int) {
	if isLike {
		m.LikeCount += delta
	} else {
		m.DislikeCount += delta
	}
}

var (
	_ sharedBus.Keyer = Movie{}
	_ sharedQuery.Row = Movie{}
)
