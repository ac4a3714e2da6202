package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// --- Importaciones del dominio y compartidas ---
	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedDB "github.com/davicafu/cinelab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"
)

// MovieRepoSQL implementa movieDomain.MovieRepository para SQLite y PostgreSQL.
// Con SQLite hay una sola conexión: dentro de una transacción todo pasa por tx.
type MovieRepoSQL struct {
	db      *sql.DB
	dialect sharedDB.Dialect
}

func NewMovieRepoSQL(db *sql.DB, dialect sharedDB.Dialect) *MovieRepoSQL {
	return &MovieRepoSQL{db: db, dialect: dialect}
}

const movieSelect = `SELECT m.id, m.title, m.detail, m.director_id, COALESCE(d.name, ''), m.creator_id,
       m.like_count, m.dislike_count, m.movie_file_path, m.created_at, m.updated_at
FROM movies m
LEFT JOIN directors d ON d.id = m.director_id`

type txQueryer interface {
	sharedDB.Queryer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *MovieRepoSQL) newBuilder(q sharedDB.Queryer) *sharedDB.SelectBuilder[movieDomain.Movie] {
	return sharedDB.NewSelectBuilder[movieDomain.Movie](q, r.dialect, movieSelect, "m", scanMovie)
}

// ------------------ Lectura ------------------

// List pagina por cursor. Los errores del cursor llegan tal cual al caller.
func (r *MovieRepoSQL) List(ctx context.Context, filter movieDomain.MovieFilter, req sharedQuery.CursorRequest, userID int64) (*sharedQuery.Page[movieDomain.Movie], error) {
	b := r.newBuilder(r.db).Where(filter.Criteria())

	page, err := sharedQuery.Paginate[movieDomain.Movie](ctx, b, req)
	if err != nil {
		return nil, err
	}

	if err := r.attachGenres(ctx, r.db, page.Data); err != nil {
		return nil, err
	}
	if userID != 0 {
		if err := r.attachLikeStatus(ctx, page.Data, userID); err != nil {
			return nil, err
		}
	}
	return page, nil
}

func (r *MovieRepoSQL) ListRecent(ctx context.Context, limit int) ([]movieDomain.Movie, error) {
	b := r.newBuilder(r.db)
	b.AddOrderBy("m.created_at", sharedQuery.DESC)
	b.AddSecondaryOrderBy("m.id", sharedQuery.DESC)
	b.SetLimit(limit)

	movies, err := b.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []movieDomain.Movie{}
	}
	return movies, r.attachGenres(ctx, r.db, movies)
}

func (r *MovieRepoSQL) GetByID(ctx context.Context, id int64) (*movieDomain.Movie, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *MovieRepoSQL) getByID(ctx context.Context, q sharedDB.Queryer, id int64) (*movieDomain.Movie, error) {
	b := r.newBuilder(q)
	b.AddCondition("m.id = ?", id)
	b.SetLimit(1)

	movies, err := b.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(movies) == 0 {
		return nil, movieDomain.ErrMovieNotFound
	}
	if err := r.attachGenres(ctx, q, movies); err != nil {
		return nil, err
	}
	return &movies[0], nil
}

// ------------------ CRUD + Outbox ------------------

func (r *MovieRepoSQL) Create(ctx context.Context, m *movieDomain.Movie, newEvent movieDomain.MovieEventFactory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	name, err := r.directorName(ctx, tx, m.Director.ID)
	if err != nil {
		return err
	}
	m.Director.Name = name

	err = tx.QueryRowContext(ctx, r.dialect.Rebind(
		`INSERT INTO movies (title, detail, director_id, creator_id, like_count, dislike_count, movie_file_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 0, ?, ?, ?)
		 RETURNING id`),
		m.Title, m.Detail, m.Director.ID, nullableID(m.CreatorID), m.MovieFilePath,
		sharedDB.FormatTime(m.CreatedAt), sharedDB.FormatTime(m.UpdatedAt),
	).Scan(&m.ID)
	if err != nil {
		if sharedDB.IsUniqueViolation(err) {
			return movieDomain.ErrMovieAlreadyExists
		}
		return fmt.Errorf("failed to insert movie: %w", err)
	}

	if err := r.replaceGenres(ctx, tx, m.ID, m.GenreIDs); err != nil {
		return err
	}
	if err := sharedDB.InsertOutboxTx(ctx, tx, r.dialect, newEvent(m)); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *MovieRepoSQL) Update(ctx context.Context, id int64, patch movieDomain.MoviePatch, newEvent movieDomain.MovieEventFactory) (*movieDomain.Movie, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := r.getByID(ctx, tx, id); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = ?"}
	args := []any{sharedDB.FormatTime(time.Now().UTC())}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Detail != nil {
		sets = append(sets, "detail = ?")
		args = append(args, *patch.Detail)
	}
	if patch.DirectorID != nil {
		if _, err := r.directorName(ctx, tx, *patch.DirectorID); err != nil {
			return nil, err
		}
		sets = append(sets, "director_id = ?")
		args = append(args, *patch.DirectorID)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE movies SET %s WHERE id = ?", strings.Join(sets, ", "))
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(query), args...); err != nil {
		if sharedDB.IsUniqueViolation(err) {
			return nil, movieDomain.ErrMovieAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if patch.GenreIDs != nil {
		if err := r.replaceGenres(ctx, tx, id, patch.GenreIDs); err != nil {
			return nil, err
		}
	}

	updated, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := sharedDB.InsertOutboxTx(ctx, tx, r.dialect, newEvent(updated)); err != nil {
		return nil, fmt.Errorf("failed to insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *MovieRepoSQL) DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM movies WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return movieDomain.ErrMovieNotFound
	}

	for _, stmt := range []string{
		`DELETE FROM movie_genres WHERE movie_id = ?`,
		`DELETE FROM movie_user_likes WHERE movie_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, r.dialect.Rebind(stmt), id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	if err := sharedDB.InsertOutboxTx(ctx, tx, r.dialect, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

// DetachGenre limpia movie_genres cuando se borra un género.
func (r *MovieRepoSQL) DetachGenre(ctx context.Context, genreID int64) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, r.dialect.Rebind(`SELECT movie_id FROM movie_genres WHERE genre_id = ?`), genreID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	var movieIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("db scan error: %w", err)
		}
		movieIDs = append(movieIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM movie_genres WHERE genre_id = ?`), genreID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return movieIDs, nil
}

// ------------------ Likes ------------------

// ToggleLike aplica la reacción y ajusta los contadores en la misma transacción.
func (r *MovieRepoSQL) ToggleLike(ctx context.Context, movieID, userID int64, isLike bool, newEvent movieDomain.LikeEventFactory) (movieDomain.LikeResult, error) {
	var result movieDomain.LikeResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	m, err := r.getByID(ctx, tx, movieID)
	if err != nil {
		return result, err
	}

	var one int
	err = tx.QueryRowContext(ctx, r.dialect.Rebind(`SELECT 1 FROM users WHERE id = ?`), userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return result, movieDomain.ErrUnknownUser
	}
	if err != nil {
		return result, fmt.Errorf("db error: %w", err)
	}

	var current *bool
	var stored bool
	err = tx.QueryRowContext(ctx, r.dialect.Rebind(
		`SELECT is_like FROM movie_user_likes WHERE movie_id = ? AND user_id = ?`), movieID, userID,
	).Scan(&stored)
	switch {
	case err == nil:
		current = &stored
	case !errors.Is(err, sql.ErrNoRows):
		return result, fmt.Errorf("db error: %w", err)
	}

	likes, dislikes := m.LikeCount, m.DislikeCount
	next := m.ToggleReaction(current, isLike)

	var stmt string
	var args []any
	switch {
	case current == nil:
		stmt, args = `INSERT INTO movie_user_likes (movie_id, user_id, is_like) VALUES (?, ?, ?)`, []any{movieID, userID, *next}
	case next == nil:
		stmt, args = `DELETE FROM movie_user_likes WHERE movie_id = ? AND user_id = ?`, []any{movieID, userID}
	default:
		stmt, args = `UPDATE movie_user_likes SET is_like = ? WHERE movie_id = ? AND user_id = ?`, []any{*next, movieID, userID}
	}
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(stmt), args...); err != nil {
		return result, fmt.Errorf("db error: %w", err)
	}

	// Deltas en vez de valores absolutos para no pisar toggles concurrentes
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(
		`UPDATE movies SET like_count = like_count + ?, dislike_count = dislike_count + ? WHERE id = ?`),
		m.LikeCount-likes, m.DislikeCount-dislikes, movieID,
	); err != nil {
		return result, fmt.Errorf("db error: %w", err)
	}

	result = movieDomain.LikeResult{
		MovieID:      movieID,
		UserID:       userID,
		IsLike:       next,
		LikeCount:    m.LikeCount,
		DislikeCount: m.DislikeCount,
	}
	if err := sharedDB.InsertOutboxTx(ctx, tx, r.dialect, newEvent(result)); err != nil {
		return movieDomain.LikeResult{}, fmt.Errorf("failed to insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return movieDomain.LikeResult{}, err
	}
	return result, nil
}

// ------------------ Helpers ------------------

func (r *MovieRepoSQL) directorName(ctx context.Context, q txQueryer, id int64) (string, error) {
	var name string
	err := q.QueryRowContext(ctx, r.dialect.Rebind(`SELECT name FROM directors WHERE id = ?`), id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %d", movieDomain.ErrDirectorNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return name, nil
}

func (r *MovieRepoSQL) replaceGenres(ctx context.Context, tx *sql.Tx, movieID int64, genreIDs []int64) error {
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM movie_genres WHERE movie_id = ?`), movieID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for _, gid := range genreIDs {
		if _, err := tx.ExecContext(ctx, r.dialect.Rebind(
			`INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`), movieID, gid,
		); err != nil {
			return fmt.Errorf("failed to link genre %d: %w", gid, err)
		}
	}
	return nil
}

// attachGenres rellena GenreIDs de un lote con una sola consulta.
func (r *MovieRepoSQL) attachGenres(ctx context.Context, q sharedDB.Queryer, movies []movieDomain.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	ids, index := movieIndex(movies)
	for i := range movies {
		movies[i].GenreIDs = []int64{}
	}

	rows, err := q.QueryContext(ctx, r.dialect.Rebind(fmt.Sprintf(
		`SELECT movie_id, genre_id FROM movie_genres WHERE movie_id IN (%s) ORDER BY movie_id, genre_id`,
		sharedDB.Placeholders(len(ids)))), ids...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var movieID, genreID int64
		if err := rows.Scan(&movieID, &genreID); err != nil {
			return err
		}
		for _, i := range index[movieID] {
			movies[i].GenreIDs = append(movies[i].GenreIDs, genreID)
		}
	}
	return rows.Err()
}

// attachLikeStatus marca la reacción del usuario en cada película del lote.
func (r *MovieRepoSQL) attachLikeStatus(ctx context.Context, movies []movieDomain.Movie, userID int64) error {
	if len(movies) == 0 {
		return nil
	}
	ids, index := movieIndex(movies)

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(fmt.Sprintf(
		`SELECT movie_id, is_like FROM movie_user_likes WHERE user_id = ? AND movie_id IN (%s)`,
		sharedDB.Placeholders(len(ids)))), append([]any{userID}, ids...)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var movieID int64
		var isLike bool
		if err := rows.Scan(&movieID, &isLike); err != nil {
			return err
		}
		for _, i := range index[movieID] {
			v := isLike
			movies[i].LikeStatus = &v
		}
	}
	return rows.Err()
}

func movieIndex(movies []movieDomain.Movie) ([]any, map[int64][]int) {
	ids := make([]any, 0, len(movies))
	index := make(map[int64][]int, len(movies))
	for i, m := range movies {
		if _, seen := index[m.ID]; !seen {
			ids = append(ids, m.ID)
		}
		index[m.ID] = append(index[m.ID], i)
	}
	return ids, index
}

func scanMovie(rows *sql.Rows) (movieDomain.Movie, error) {
	var (
		m                    movieDomain.Movie
		creator              sql.NullInt64
		createdAt, updatedAt string
	)
	err := rows.Scan(
		&m.ID, &m.Title, &m.Detail, &m.Director.ID, &m.Director.Name, &creator,
		&m.LikeCount, &m.DislikeCount, &m.MovieFilePath, &createdAt, &updatedAt,
	)
	if err != nil {
		return m, fmt.Errorf("db scan error: %w", err)
	}
	m.CreatorID = creator.Int64
	if m.CreatedAt, err = sharedDB.ParseTime(createdAt); err != nil {
		return m, err
	}
	if m.UpdatedAt, err = sharedDB.ParseTime(updatedAt); err != nil {
		return m, err
	}
	return m, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// Verificación estática de la interfaz.
var _ movieDomain.MovieRepository = (*MovieRepoSQL)(nil)
