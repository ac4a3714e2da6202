package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/davicafu/cinelab/internal/director/domain"
	sharedDB "github.com/davicafu/cinelab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

// DirectorRepoSQL implementa domain.DirectorRepository para SQLite y PostgreSQL.
type DirectorRepoSQL struct {
	db      *sql.DB
	dialect sharedDB.Dialect
}

func NewDirectorRepoSQL(db *sql.DB, dialect sharedDB.Dialect) *DirectorRepoSQL {
	return &DirectorRepoSQL{db: db, dialect: dialect}
}

const directorSelect = `SELECT d.id, d.name, d.dob, d.nationality, d.created_at, d.updated_at FROM directors d`

func (r *DirectorRepoSQL) newBuilder(q sharedDB.Queryer) *sharedDB.SelectBuilder[domain.Director] {
	return sharedDB.NewSelectBuilder[domain.Director](q, r.dialect, directorSelect, "d", scanDirector)
}

func (r *DirectorRepoSQL) Create(ctx context.Context, d *domain.Director) error {
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(
		`INSERT INTO directors (name, dob, nationality, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		d.Name, sharedDB.FormatTime(d.DOB), d.Nationality, sharedDB.FormatTime(d.CreatedAt), sharedDB.FormatTime(d.UpdatedAt),
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("failed to insert director: %w", err)
	}
	return nil
}

func (r *DirectorRepoSQL) GetByID(ctx context.Context, id int64) (*domain.Director, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *DirectorRepoSQL) getByID(ctx context.Context, q sharedDB.Queryer, id int64) (*domain.Director, error) {
	b := r.newBuilder(q)
	b.AddCondition("d.id = ?", id)
	b.SetLimit(1)

	directors, err := b.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(directors) == 0 {
		return nil, domain.ErrDirectorNotFound
	}
	return &directors[0], nil
}

func (r *DirectorRepoSQL) Update(ctx context.Context, id int64, patch domain.DirectorPatch) (*domain.Director, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	sets := []string{"updated_at = ?"}
	args := []any{sharedDB.FormatTime(time.Now().UTC())}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.DOB != nil {
		sets = append(sets, "dob = ?")
		args = append(args, sharedDB.FormatTime(*patch.DOB))
	}
	if patch.Nationality != nil {
		sets = append(sets, "nationality = ?")
		args = append(args, *patch.Nationality)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE directors SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := tx.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, domain.ErrDirectorNotFound
	}

	updated, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByID comprueba dentro de la transacción que ninguna película lo use.
func (r *DirectorRepoSQL) DeleteByID(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var movies int
	if err := tx.QueryRowContext(ctx, r.dialect.Rebind(`SELECT COUNT(*) FROM movies WHERE director_id = ?`), id).Scan(&movies); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if movies > 0 {
		return domain.ErrDirectorHasMovies
	}

	res, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM directors WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrDirectorNotFound
	}
	return tx.Commit()
}

// List pagina por cursor sobre id, name, dob, nationality o created_at.
func (r *DirectorRepoSQL) List(ctx context.Context, filter domain.DirectorFilter, req sharedQuery.CursorRequest) (*sharedQuery.Page[domain.Director], error) {
	b := r.newBuilder(r.db).Where(filter.Criteria())
	return sharedQuery.Paginate[domain.Director](ctx, b, req)
}

func scanDirector(rows *sql.Rows) (domain.Director, error) {
	var (
		d                         domain.Director
		dob, createdAt, updatedAt string
	)
	if err := rows.Scan(&d.ID, &d.Name, &dob, &d.Nationality, &createdAt, &updatedAt); err != nil {
		return d, fmt.Errorf("db scan error: %w", err)
	}

	var err error
	if d.DOB, err = sharedDB.ParseTime(dob); err != nil {
		return d, err
	}
	if d.CreatedAt, err = sharedDB.ParseTime(createdAt); err != nil {
		return d, err
	}
	if d.UpdatedAt, err = sharedDB.ParseTime(updatedAt); err != nil {
		return d, err
	}
	return d, nil
}

var _ domain.DirectorRepository = (*DirectorRepoSQL)(nil)
