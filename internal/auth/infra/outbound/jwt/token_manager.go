package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/davicafu/cinelab/internal/auth/domain"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
)

const (
	DefaultAccessTokenTTL  = 300 * time.Second
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// Config agrupa secretos y duraciones por tipo de token.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenManager firma con HS256 y un secreto distinto por tipo de token.
type TokenManager struct {
	secrets map[domain.TokenType][]byte
	ttls    map[domain.TokenType]time.Duration
	now     func() time.Time
}

func NewTokenManager(cfg Config) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwt: access and refresh secrets are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenManager{
		secrets: map[domain.TokenType][]byte{
			domain.AccessToken:  []byte(cfg.AccessSecret),
			domain.RefreshToken: []byte(cfg.RefreshSecret),
		},
		ttls: map[domain.TokenType]time.Duration{
			domain.AccessToken:  cfg.AccessTTL,
			domain.RefreshToken: cfg.RefreshTTL,
		},
		now: time.Now,
	}, nil
}

func (m *TokenManager) Issue(userID int64, role userDomain.Role, typ domain.TokenType) (string, error) {
	secret, ok := m.secrets[typ]
	if !ok {
		return "", domain.ErrWrongTokenType
	}
	now := m.now()
	claims := jwtv5.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": int(role),
		"type": string(typ),
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttls[typ]).Unix(),
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Verify(token string) (domain.Claims, error) {
	// 1. Leer el tipo sin verificar para saber con qué secreto comprobar la firma
	unverified := jwtv5.MapClaims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(token, unverified); err != nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	typ := domain.TokenType(stringClaim(unverified, "type"))
	secret, ok := m.secrets[typ]
	if !ok {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	// 2. Verificar firma, algoritmo y expiración
	claims := jwtv5.MapClaims{}
	_, err := jwtv5.ParseWithClaims(token, claims, func(t *jwtv5.Token) (any, error) {
		return secret, nil
	}, jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}), jwtv5.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return domain.Claims{}, domain.ErrTokenExpired
		}
		return domain.Claims{}, domain.ErrInvalidToken
	}

	return toClaims(claims, typ)
}

func toClaims(claims jwtv5.MapClaims, typ domain.TokenType) (domain.Claims, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	role, ok := claims["role"].(float64)
	if !ok || !userDomain.Role(role).Valid() {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	return domain.Claims{
		UserID:    userID,
		Role:      userDomain.Role(role),
		Type:      typ,
		ExpiresAt: exp.Time,
	}, nil
}

func stringClaim(claims jwtv5.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

var _ domain.TokenManager = (*TokenManager)(nil)
