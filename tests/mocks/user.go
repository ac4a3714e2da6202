package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
)

// InMemoryUserRepo simula UserRepository.
type InMemoryUserRepo struct {
	Users  map[int64]*userDomain.User
	Calls  map[string]int
	nextID int64
	mu     sync.Mutex
}

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		Users: make(map[int64]*userDomain.User),
		Calls: make(map[string]int),
	}
}

func (r *InMemoryUserRepo) Create(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.Email == u.Email {
			return userDomain.ErrUserAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	stored := *u
	r.Users[u.ID] = &stored
	return nil
}

func (r *InMemoryUserRepo) GetByID(ctx context.Context, id int64) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["GetByID"]++
	u, ok := r.Users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *InMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, userDomain.ErrUserNotFound
}

func (r *InMemoryUserRepo) Update(ctx context.Context, id int64, changes userDomain.UserChanges) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	if changes.PasswordHash != nil {
		u.PasswordHash = *changes.PasswordHash
	}
	if changes.Role != nil {
		u.Role = *changes.Role
	}
	u.UpdatedAt = time.Now().UTC()
	out := *u
	return &out, nil
}

func (r *InMemoryUserRepo) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Users[id]; !ok {
		return userDomain.ErrUserNotFound
	}
	delete(r.Users, id)
	return nil
}

// List no pagina: filtra por email y devuelve id DESC en una página.
func (r *InMemoryUserRepo) List(ctx context.Context, filter userDomain.UserFilter, req sharedQuery.CursorRequest) (*sharedQuery.Page[userDomain.User], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := []userDomain.User{}
	for _, u := range r.Users {
		if filter.Email != "" && !strings.Contains(u.Email, strings.ToLower(filter.Email)) {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		data = append(data, *u)
	}
	sort.Slice(data, func(i, j int) bool { return data[i].ID > data[j].ID })
	return &sharedQuery.Page[userDomain.User]{Data: data}, nil
}

var _ userDomain.UserRepository = (*InMemoryUserRepo)(nil)

// PlainHasher evita el coste de bcrypt en los tests.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (PlainHasher) Compare(hash, password string) bool {
	return hash == "hashed:"+password
}

var _ userDomain.PasswordHasher = PlainHasher{}
