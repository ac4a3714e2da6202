package domain

import (
	"context"
	"errors"
	"time"

	userDomain "github.com/davicafu/cinelab/internal/user/domain"
)

// TokenType distingue el uso del JWT; cada tipo se firma con su propio secreto.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

func (t TokenType) Valid() bool {
	return t == AccessToken || t == RefreshToken
}

// Claims es lo que viaja dentro del token.
type Claims struct {
	UserID    int64           `json:"sub"`
	Role      userDomain.Role `json:"role"`
	Type      TokenType       `json:"type"`
	ExpiresAt time.Time       `json:"exp"`
}

type TokenPair struct {
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken"`
}

// ---------- Errores de dominio ----------
var (
	// ErrMalformedHeader: la cabecera Authorization no tiene la forma "<esquema> <token>".
	ErrMalformedHeader  = errors.New("invalid token")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenBlocked     = errors.New("token has been revoked")
	ErrWrongTokenType   = errors.New("unexpected token type")
	ErrAuthRequired     = errors.New("authentication required")
	ErrForbidden        = errors.New("insufficient role")
	ErrBlockUnavailable = errors.New("token blocking is not available")
)

// ---------- Interfaces (Ports) ----------

// TokenManager emite y verifica tokens firmados.
type TokenManager interface {
	Issue(userID int64, role userDomain.Role, typ TokenType) (string, error)
	// Verify elige el secreto según el tipo declarado en el token.
	Verify(token string) (Claims, error)
}

// Credentials es lo que auth necesita del contexto de usuarios.
type Credentials interface {
	CreateUser(ctx context.Context, email, password string, role userDomain.Role) (*userDomain.User, error)
	Authenticate(ctx context.Context, email, password string) (*userDomain.User, error)
}

// BlockedTokenKey es la clave de caché de un token revocado.
func BlockedTokenKey(token string) string {
	return "BLOCK_TOKEN_" + token
}
