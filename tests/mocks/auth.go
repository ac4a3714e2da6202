package mocks

import (
	authDomain "github.com/davicafu/cinelab/internal/auth/domain"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
	"github.com/stretchr/testify/mock"
)

// MockTokenManager simula el emisor/verificador de JWT.
type MockTokenManager struct {
	mock.Mock
}

var _ authDomain.TokenManager = (*MockTokenManager)(nil)

func (m *MockTokenManager) Issue(userID int64, role userDomain.Role, typ authDomain.TokenType) (string, error) {
	args := m.Called(userID, role, typ)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) Verify(token string) (authDomain.Claims, error) {
	args := m.Called(token)
	return args.Get(0).(authDomain.Claims), args.Error(1)
}
