package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sharedDB "github.com/davicafu/cinelab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
	"github.com/davicafu/cinelab/internal/user/domain"
)

// UserRepoSQL implementa domain.UserRepository para SQLite y PostgreSQL.
type UserRepoSQL struct {
	db      *sql.DB
	dialect sharedDB.Dialect
}

func NewUserRepoSQL(db *sql.DB, dialect sharedDB.Dialect) *UserRepoSQL {
	return &UserRepoSQL{db: db, dialect: dialect}
}

const userSelect = `SELECT u.id, u.email, u.password, u.role, u.created_at, u.updated_at FROM users u`

func (r *UserRepoSQL) newBuilder(q sharedDB.Queryer) *sharedDB.SelectBuilder[domain.User] {
	return sharedDB.NewSelectBuilder[domain.User](q, r.dialect, userSelect, "u", scanUser)
}

// ------------------ Métodos ------------------

func (r *UserRepoSQL) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(
		`INSERT INTO users (email, password, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		u.Email, u.PasswordHash, int(u.Role), sharedDB.FormatTime(u.CreatedAt), sharedDB.FormatTime(u.UpdatedAt),
	).Scan(&u.ID)
	if err != nil {
		if sharedDB.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepoSQL) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, r.db, "u.id = ?", id)
}

func (r *UserRepoSQL) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, r.db, "u.email = ?", email)
}

func (r *UserRepoSQL) getOne(ctx context.Context, q sharedDB.Queryer, cond string, arg any) (*domain.User, error) {
	b := r.newBuilder(q)
	b.AddCondition(cond, arg)
	b.SetLimit(1)

	users, err := b.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(users) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return &users[0], nil
}

// Update actualiza solo los campos informados y relee el usuario en la misma transacción.
func (r *UserRepoSQL) Update(ctx context.Context, id int64, changes domain.UserChanges) (*domain.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	sets := []string{"updated_at = ?"}
	args := []any{sharedDB.FormatTime(time.Now().UTC())}
	if changes.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *changes.Email)
	}
	if changes.PasswordHash != nil {
		sets = append(sets, "password = ?")
		args = append(args, *changes.PasswordHash)
	}
	if changes.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, int(*changes.Role))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := tx.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		if sharedDB.IsUniqueViolation(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, domain.ErrUserNotFound
	}

	updated, err := r.getOne(ctx, tx, "u.id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *UserRepoSQL) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List pagina por cursor sobre id, email, role o created_at.
func (r *UserRepoSQL) List(ctx context.Context, filter domain.UserFilter, req sharedQuery.CursorRequest) (*sharedQuery.Page[domain.User], error) {
	b := r.newBuilder(r.db).Where(filter.Criteria())
	return sharedQuery.Paginate[domain.User](ctx, b, req)
}

func scanUser(rows *sql.Rows) (domain.User, error) {
	var (
		u                    domain.User
		role                 int
		createdAt, updatedAt string
	)
	if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &createdAt, &updatedAt); err != nil {
		return u, fmt.Errorf("db scan error: %w", err)
	}
	u.Role = domain.Role(role)

	var err error
	if u.CreatedAt, err = sharedDB.ParseTime(createdAt); err != nil {
		return u, err
	}
	if u.UpdatedAt, err = sharedDB.ParseTime(updatedAt); err != nil {
		return u, err
	}
	return u, nil
}

var _ domain.UserRepository = (*UserRepoSQL)(nil)
