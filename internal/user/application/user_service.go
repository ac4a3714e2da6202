package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	sharedCache "github.com/davicafu/cinelab/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/cinelab/internal/shared/infra/utils"
	"github.com/davicafu/cinelab/internal/user/domain"
	"go.uber.org/zap"
)

const userCacheTTL = 0

var validate = validator.New()

// UserService define los casos de uso relacionados con User.
type UserService struct {
	repo   domain.UserRepository
	hasher domain.PasswordHasher
	cache  sharedCache.Cache
	log    *zap.Logger
}

// NewUserService constructor
func NewUserService(repo domain.UserRepository, hasher domain.PasswordHasher, cache sharedCache.Cache, log *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		cache:  cache,
		log:    log,
	}
}

func (s *UserService) CreateUser(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" || !role.Valid() {
		return nil, domain.ErrInvalidUser
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("User created", zap.Int64("user_id", user.ID), zap.String("role", role.String()))
	return user, nil
}

// EnsureUser crea el usuario si el email aún no existe. Sirve para sembrar el admin.
func (s *UserService) EnsureUser(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	user, err := s.CreateUser(ctx, email, password, role)
	if errors.Is(err, domain.ErrUserAlreadyExists) {
		return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	}
	return user, err
}

// Authenticate comprueba email y contraseña. No distingue email desconocido de contraseña errónea.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser obtiene un usuario (primero intenta desde cache).
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	// 1. Intentar cache
	if s.cache != nil {
		var u domain.User
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &u); ok {
			return &u, nil
		}
	}

	// 2. Ir al repo con reintentos
	var user *domain.User
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		user, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, domain.ErrUserNotFound) {
			return sharedUtils.Permanent(errRetry)
		}
		return errRetry
	})
	if err != nil {
		return nil, err
	}

	// 3. Actualizar cache en background sin bloquear la respuesta
	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(id), user, userCacheTTL, s.log)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter domain.UserFilter, req sharedQuery.CursorRequest) (*sharedQuery.Page[domain.User], error) {
	return s.repo.List(ctx, filter, req)
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	var changes domain.UserChanges

	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		changes.Email = &email
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, domain.ErrInvalidUser
		}
		changes.Role = patch.Role
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, domain.ErrInvalidUser
		}
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}

	user, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, domain.CacheKeyByID(id), s.log)
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, domain.CacheKeyByID(id), s.log)
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidUser)
	}
	return email, nil
}
