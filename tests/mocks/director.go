package mocks

import (
	"context"

	directorDomain "github.com/davicafu/cinelab/internal/director/domain"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	"github.com/stretchr/testify/mock"
)

// MockDirectorRepo simula DirectorRepository con testify.
type MockDirectorRepo struct {
	mock.Mock
}

var _ directorDomain.DirectorRepository = (*MockDirectorRepo)(nil)

func (m *MockDirectorRepo) Create(ctx context.Context, d *directorDomain.Director) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDirectorRepo) GetByID(ctx context.Context, id int64) (*directorDomain.Director, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*directorDomain.Director)
	return d, args.Error(1)
}

func (m *MockDirectorRepo) Update(ctx context.Context, id int64, patch directorDomain.DirectorPatch) (*directorDomain.Director, error) {
	args := m.Called(ctx, id, patch)
	d, _ := args.Get(0).(*directorDomain.Director)
	return d, args.Error(1)
}

func (m *MockDirectorRepo) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDirectorRepo) List(ctx context.Context, filter directorDomain.DirectorFilter, req sharedQuery.CursorRequest) (*sharedQuery.Page[directorDomain.Director], error) {
	args := m.Called(ctx, filter, req)
	p, _ := args.Get(0).(*sharedQuery.Page[directorDomain.Director])
	return p, args.Error(1)
}
