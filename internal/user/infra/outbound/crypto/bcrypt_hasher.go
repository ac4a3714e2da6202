package crypto

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/davicafu/cinelab/internal/user/domain"
)

// BcryptHasher implementa domain.PasswordHasher con bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher usa rounds como coste; fuera de rango cae al coste por defecto.
func NewBcryptHasher(rounds int) *BcryptHasher {
	if rounds < bcrypt.MinCost || rounds > bcrypt.MaxCost {
		rounds = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: rounds}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ domain.PasswordHasher = (*BcryptHasher)(nil)
