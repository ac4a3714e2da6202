package domain

import (
	"context"
	"errors"
	"fmt"

	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

// ---------- Errores de dominio ----------
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidUser        = errors.New("invalid user")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ---------- Interfaces (Ports) ----------

// UserRepository define las operaciones persistentes para User.
type UserRepository interface {
	// Debe devolver ErrUserAlreadyExists si el email ya está dado de alta.
	Create(ctx context.Context, u *User) error

	// Debe devolver ErrUserNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update aplica solo los campos no nil y devuelve el usuario resultante.
	Update(ctx context.Context, id int64, changes UserChanges) (*User, error)

	DeleteByID(ctx context.Context, id int64) error

	List(ctx context.Context, filter UserFilter, req sharedQuery.CursorRequest) (*sharedQuery.Page[User], error)
}

// PasswordHasher encapsula el algoritmo de hash de contraseñas.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// ---------- Tipos de entrada ----------

// UserPatch es lo que llega del exterior; la contraseña va en claro.
type UserPatch struct {
	Email    *string
	Password *string
	Role     *Role
}

// UserChanges es lo que se persiste; la contraseña ya va hasheada.
type UserChanges struct {
	Email        *string
	PasswordHash *string
	Role         *Role
}

// UserFilter agrupa los filtros del listado.
type UserFilter struct {
	Email string
	Role  *Role
}

// ---------- Helpers comunes (cache keys, etc.) ----------

// CacheKeyByID forma una key consistente para cache usando ID.
func CacheKeyByID(id int64) string {
	return fmt.Sprintf("user:id:%d", id)
}
