package domain

import (
	"strconv"
	"time"

	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

// Role es el nivel de acceso; un número menor da más permisos.
type Role int

const (
	RoleAdmin Role = iota
	RolePaidUser
	RoleUser
)

func (r Role) Valid() bool {
	return r >= RoleAdmin && r <= RoleUser
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RolePaidUser:
		return "paidUser"
	case RoleUser:
		return "user"
	}
	return "unknown"
}

// Allows indica si r alcanza el nivel required.
func (r Role) Allows(required Role) bool {
	return r.Valid() && r <= required
}

// User representa un usuario del sistema. El hash nunca se serializa.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) PartitionKey() string {
	return strconv.FormatInt(u.ID, 10)
}

// CursorValue expone las columnas por las que se puede ordenar el listado.
func (u User) CursorValue(column string) (any, bool) {
	switch column {
	case "id":
		return u.ID, true
	case "email":
		return u.Email, true
	case "role":
		return int64(u.Role), true
	case "created_at":
		return u.CreatedAt, true
	}
	return nil, false
}

var _ sharedQuery.Row = User{}
