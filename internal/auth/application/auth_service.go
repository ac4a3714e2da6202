package application

import (
	"context"
	"encoding/base64"
	"math"
	"strings"
	"time"

	"github.com/davicafu/cinelab/internal/auth/domain"
	sharedCache "github.com/davicafu/cinelab/internal/shared/infra/platform/cache"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
	"go.uber.org/zap"
)

// AuthService emite, rota y revoca tokens. Los usuarios viven en su propio contexto.
type AuthService struct {
	creds  domain.Credentials
	tokens domain.TokenManager
	cache  sharedCache.Cache
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(creds domain.Credentials, tokens domain.TokenManager, cache sharedCache.Cache, log *zap.Logger) *AuthService {
	return &AuthService{
		creds:  creds,
		tokens: tokens,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
}

// ---------- Cabeceras ----------

// ParseBasic decodifica "Basic base64(email:password)". La contraseña puede contener ':'.
func ParseBasic(header string) (email, password string, err error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "basic") {
		return "", "", domain.ErrMalformedHeader
	}
	raw, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", domain.ErrMalformedHeader
	}
	creds := strings.SplitN(string(raw), ":", 2)
	if len(creds) != 2 || creds[0] == "" || creds[1] == "" {
		return "", "", domain.ErrMalformedHeader
	}
	return creds[0], creds[1], nil
}

// ParseBearerToken extrae el token de "Bearer <token>" sin verificarlo.
func ParseBearerToken(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrMalformedHeader
	}
	return parts[1], nil
}

// ---------- Casos de uso ----------

// Register siempre crea usuarios con rol RoleUser.
func (s *AuthService) Register(ctx context.Context, header string) (*userDomain.User, error) {
	email, password, err := ParseBasic(header)
	if err != nil {
		return nil, err
	}
	return s.creds.CreateUser(ctx, email, password, userDomain.RoleUser)
}

func (s *AuthService) Login(ctx context.Context, header string) (domain.TokenPair, error) {
	email, password, err := ParseBasic(header)
	if err != nil {
		return domain.TokenPair{}, err
	}
	user, err := s.creds.Authenticate(ctx, email, password)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.tokens.Issue(user.ID, user.Role, domain.RefreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	access, err := s.tokens.Issue(user.ID, user.Role, domain.AccessToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.log.Info("User logged in", zap.Int64("user_id", user.ID))
	return domain.TokenPair{RefreshToken: refresh, AccessToken: access}, nil
}

// RotateAccessToken emite un access token nuevo a partir de un refresh token ya verificado.
func (s *AuthService) RotateAccessToken(claims domain.Claims) (string, error) {
	if claims.Type != domain.RefreshToken {
		return "", domain.ErrWrongTokenType
	}
	return s.tokens.Issue(claims.UserID, claims.Role, domain.AccessToken)
}

// BlockToken revoca un token hasta su expiración natural.
func (s *AuthService) BlockToken(ctx context.Context, token string) error {
	if s.cache == nil {
		return domain.ErrBlockUnavailable
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}

	ttl := int(math.Ceil(claims.ExpiresAt.Sub(s.now()).Seconds()))
	if ttl < 1 {
		ttl = 1
	}
	if err := s.cache.Set(ctx, domain.BlockedTokenKey(token), true, ttl); err != nil {
		s.log.Error("Failed to block token", zap.Error(err))
		return err
	}

	s.log.Info("Token blocked", zap.Int64("user_id", claims.UserID), zap.Int("ttl_secs", ttl))
	return nil
}

// Authorize valida una cabecera Bearer: forma, firma, expiración y lista de bloqueo.
func (s *AuthService) Authorize(ctx context.Context, header string) (domain.Claims, error) {
	token, err := ParseBearerToken(header)
	if err != nil {
		return domain.Claims{}, err
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Claims{}, err
	}
	if s.isBlocked(ctx, token) {
		return domain.Claims{}, domain.ErrTokenBlocked
	}
	return claims, nil
}

func (s *AuthService) isBlocked(ctx context.Context, token string) bool {
	if s.cache == nil {
		return false
	}
	var blocked bool
	found, err := s.cache.Get(ctx, domain.BlockedTokenKey(token), &blocked)
	if err != nil {
		s.log.Warn("Block list lookup failed", zap.Error(err))
		return false
	}
	return found && blocked
}
