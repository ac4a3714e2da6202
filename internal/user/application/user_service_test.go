package application

import (
	"context"
	"testing"
	"time"

	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	"github.com/davicafu/cinelab/internal/user/domain"
	"github.com/davicafu/cinelab/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService() (*UserService, *mocks.InMemoryUserRepo, *mocks.DummyCache) {
	repo := mocks.NewInMemoryUserRepo()
	cache := mocks.NewDummyCache()
	return NewUserService(repo, mocks.PlainHasher{}, cache, zap.NewNop()), repo, cache
}

func TestCreateUser_Success(t *testing.T) {
	service, repo, _ := newService()

	user, err := service.CreateUser(context.Background(), "  Test@Example.com ", "secret", domain.RoleUser)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)

	// La contraseña se guarda hasheada
	assert.Equal(t, "hashed:secret", repo.Users[user.ID].PasswordHash)
}

func TestCreateUser_Invalid(t *testing.T) {
	service, _, _ := newService()
	ctx := context.Background()

	_, err := service.CreateUser(ctx, "not-an-email", "secret", domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = service.CreateUser(ctx, "a@b.com", "", domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = service.CreateUser(ctx, "a@b.com", "secret", domain.Role(9))
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestCreateUser_AlreadyExists(t *testing.T) {
	service, _, _ := newService()
	ctx := context.Background()

	_, err := service.CreateUser(ctx, "dup@example.com", "secret", domain.RoleUser)
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, "DUP@example.com", "other", domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestEnsureUser_IsIdempotent(t *testing.T) {
	service, repo, _ := newService()
	ctx := context.Background()

	first, err := service.EnsureUser(ctx, "admin@example.com", "secret", domain.RoleAdmin)
	require.NoError(t, err)
	second, err := service.EnsureUser(ctx, "admin@example.com", "secret", domain.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.Users, 1)
}

func TestAuthenticate(t *testing.T) {
	service, _, _ := newService()
	ctx := context.Background()

	created, err := service.CreateUser(ctx, "ana@example.com", "secret", domain.RolePaidUser)
	require.NoError(t, err)

	user, err := service.Authenticate(ctx, "ANA@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = service.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = service.Authenticate(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestGetUser_CacheAside(t *testing.T) {
	service, repo, cache := newService()
	ctx := context.Background()

	created, err := service.CreateUser(ctx, "ana@example.com", "secret", domain.RoleUser)
	require.NoError(t, err)

	_, err = service.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return cache.Has(domain.CacheKeyByID(created.ID)) }, time.Second, 10*time.Millisecond)

	got, err := service.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Empty(t, got.PasswordHash, "el hash no sale nunca en JSON")
	assert.Equal(t, 1, repo.Calls["GetByID"])
}

func TestGetUser_NotFound(t *testing.T) {
	service, repo, _ := newService()

	_, err := service.GetUser(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, 1, repo.Calls["GetByID"], "un not found no se reintenta")
}

func TestUpdateUser(t *testing.T) {
	service, repo, _ := newService()
	ctx := context.Background()

	created, err := service.CreateUser(ctx, "ana@example.com", "secret", domain.RoleUser)
	require.NoError(t, err)

	password := "changed"
	role := domain.RolePaidUser
	updated, err := service.UpdateUser(ctx, created.ID, domain.UserPatch{Password: &password, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePaidUser, updated.Role)
	assert.Equal(t, "hashed:changed", repo.Users[created.ID].PasswordHash)

	bad := domain.Role(42)
	_, err = service.UpdateUser(ctx, created.ID, domain.UserPatch{Role: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	email := "nope"
	_, err = service.UpdateUser(ctx, created.ID, domain.UserPatch{Email: &email})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = service.UpdateUser(ctx, 999, domain.UserPatch{Role: &role})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteAndListUsers(t *testing.T) {
	service, _, _ := newService()
	ctx := context.Background()

	a, err := service.CreateUser(ctx, "a@example.com", "secret", domain.RoleUser)
	require.NoError(t, err)
	_, err = service.CreateUser(ctx, "b@example.com", "secret", domain.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(ctx, a.ID))
	assert.ErrorIs(t, service.DeleteUser(ctx, a.ID), domain.ErrUserNotFound)

	page, err := service.ListUsers(ctx, domain.UserFilter{}, sharedQuery.CursorRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "b@example.com", page.Data[0].Email)
}
