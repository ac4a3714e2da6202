package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davicafu/cinelab/internal/genre/domain"
	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedDB "github.com/davicafu/cinelab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

// GenreRepoSQL implementa domain.GenreRepository para SQLite y PostgreSQL.
type GenreRepoSQL struct {
	db      *sql.DB
	dialect sharedDB.Dialect
}

func NewGenreRepoSQL(db *sql.DB, dialect sharedDB.Dialect) *GenreRepoSQL {
	return &GenreRepoSQL{db: db, dialect: dialect}
}

const genreSelect = `SELECT g.id, g.name, g.created_at, g.updated_at FROM genres g`

func (r *GenreRepoSQL) newBuilder(q sharedDB.Queryer) *sharedDB.SelectBuilder[domain.Genre] {
	return sharedDB.NewSelectBuilder[domain.Genre](q, r.dialect, genreSelect, "g", scanGenre)
}

func (r *GenreRepoSQL) Create(ctx context.Context, g *domain.Genre, newEvent domain.GenreEventFactory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, r.dialect.Rebind(
		`INSERT INTO genres (name, created_at, updated_at) VALUES (?, ?, ?) RETURNING id`),
		g.Name, sharedDB.FormatTime(g.CreatedAt), sharedDB.FormatTime(g.UpdatedAt),
	).Scan(&g.ID)
	if err != nil {
		if sharedDB.IsUniqueViolation(err) {
			return domain.ErrGenreAlreadyExists
		}
		return fmt.Errorf("failed to insert genre: %w", err)
	}

	if err := sharedDB.InsertOutboxTx(ctx, tx, r.dialect, newEvent(g)); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *GenreRepoSQL) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *GenreRepoSQL) getByID(ctx context.Context, q sharedDB.Queryer, id int64) (*domain.Genre, error) {
	b := r.newBuilder(q)
	b.AddCondition("g.id = ?", id)
	b.SetLimit(1)

	rows, err := b.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrGenreNotFound
	}
	return &rows[0], nil
}

func (r *GenreRepoSQL) Rename(ctx context.Context, id int64, name string, newEvent domain.GenreEventFactory) (*domain.Genre, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.dialect.Rebind(`UPDATE genres SET name = ?, updated_at = ? WHERE id = ?`),
		name, sharedDB.FormatTime(time.Now().UTC()), id)
	if err != nil {
		if sharedDB.IsUniqueViolation(err) {
			return nil, domain.ErrGenreAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, domain.ErrGenreNotFound
	}

	g, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := sharedDB.InsertOutboxTx(ctx, tx, r.dialect, newEvent(g)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteByID no toca movie_genres: el contexto de películas reacciona a genre.deleted.
func (r *GenreRepoSQL) DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM genres WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrGenreNotFound
	}

	if err := sharedDB.InsertOutboxTx(ctx, tx, r.dialect, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *GenreRepoSQL) List(ctx context.Context) ([]domain.Genre, error) {
	b := r.newBuilder(r.db)
	b.AddOrderBy("g.id", sharedQuery.ASC)

	genres, err := b.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if genres == nil {
		genres = []domain.Genre{}
	}
	return genres, nil
}

func (r *GenreRepoSQL) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT id FROM genres WHERE id IN (%s)`, sharedDB.Placeholders(len(ids)))
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var existing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db scan error: %w", err)
		}
		existing = append(existing, id)
	}
	return existing, rows.Err()
}

func scanGenre(rows *sql.Rows) (domain.Genre, error) {
	var (
		g                    domain.Genre
		createdAt, updatedAt string
	)
	if err := rows.Scan(&g.ID, &g.Name, &createdAt, &updatedAt); err != nil {
		return g, fmt.Errorf("db scan error: %w", err)
	}

	var err error
	if g.CreatedAt, err = sharedDB.ParseTime(createdAt); err != nil {
		return g, err
	}
	if g.UpdatedAt, err = sharedDB.ParseTime(updatedAt); err != nil {
		return g, err
	}
	return g, nil
}

var _ domain.GenreRepository = (*GenreRepoSQL)(nil)
