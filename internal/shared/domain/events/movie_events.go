package events

import "time"

// Contratos de integración, NO entidades del dominio.
// Se definen planos para intercambio entre contextos.

type MovieCreated struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	DirectorID int64     `json:"directorId"`
	GenreIDs   []int64   `json:"genreIds"`
	CreatorID  int64     `json:"creatorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type MovieUpdated struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	DirectorID int64     `json:"directorId"`
	GenreIDs   []int64   `json:"genreIds"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type MovieDeleted struct {
	ID int64 `json:"id"`
}

// MovieLiked se emite en cada toggle. IsLike nil significa que la reacción se retiró.
type MovieLiked struct {
	MovieID      int64     `json:"movieId"`
	UserID       int64     `json:"userId"`
	IsLike       *bool     `json:"isLike"`
	LikeCount    int       `json:"likeCount"`
	DislikeCount int       `json:"dislikeCount"`
	At           time.Time `json:"at"`
}

type GenreChanged struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
