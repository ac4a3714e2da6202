package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

type Director struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DOB         time.Time `json:"dob"`
	Nationality string    `json:"nationality"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d Director) PartitionKey() string {
	return strconv.FormatInt(d.ID, 10)
}

func (d Director) CursorValue(column string) (any, bool) {
	switch column {
	case "id":
		return d.ID, true
	case "name":
		return d.Name, true
	case "dob":
		return d.DOB, true
	case "nationality":
		return d.Nationality, true
	case "created_at":
		return d.CreatedAt, true
	}
	return nil, false
}

var _ sharedQuery.Row = Director{}

// Validate comprueba los campos obligatorios.
func (d Director) Validate() error {
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Nationality) == "" || d.DOB.IsZero() {
		return ErrInvalidDirector
	}
	return nil
}

// ---------- Errores de dominio ----------
var (
	ErrDirectorNotFound = errors.New("director not found")
	ErrInvalidDirector  = errors.New("director requires name, dob and nationality")

	// ErrDirectorHasMovies: no se borra un director con películas asociadas.
	ErrDirectorHasMovies = errors.New("director still has movies")
)

// DirectorPatch: los nil no se tocan.
type DirectorPatch struct {
	Name        *string
	DOB         *time.Time
	Nationality *string
}

// DirectorFilter filtra el listado por nombre (contiene, sin mayúsculas).
type DirectorFilter struct {
	Name string
}

func (f DirectorFilter) Criteria() sharedDomain.Criteria {
	return sharedDomain.And(sharedDomain.ContainsCriteria{Field: "name", Text: f.Name})
}

// ---------- Interfaces (Ports) ----------

type DirectorRepository interface {
	Create(ctx context.Context, d *Director) error
	// Debe devolver ErrDirectorNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*Director, error)
	Update(ctx context.Context, id int64, patch DirectorPatch) (*Director, error)
	// Devuelve ErrDirectorHasMovies si alguna película lo referencia.
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context, filter DirectorFilter, req sharedQuery.CursorRequest) (*sharedQuery.Page[Director], error)
}

func CacheKeyByID(id int64) string {
	return fmt.Sprintf("director:id:%d", id)
}
