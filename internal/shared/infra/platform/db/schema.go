package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sharedQuery "github.com/davicafu/cinelab/internal/shared/infra/platform/query"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
	_ "modernc.org/sqlite"             // SQLite sin cgo
)

// Open abre la conexión y comprueba que responde.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// Una sola conexión: ":memory:" es por conexión y SQLite serializa escrituras igualmente.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return conn, nil
}

// Los timestamps se guardan como texto en query.TimeLayout en ambos motores,
// así un created_at dentro de un cursor se compara igual que en la tabla.

// FormatTime es el valor a guardar en columnas *_at.
func FormatTime(t time.Time) string {
	return sharedQuery.FormatTime(t)
}

// ParseTime lee una columna *_at.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(sharedQuery.TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS users (
    id {{PK}},
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    role INTEGER NOT NULL DEFAULT 2,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS directors (
    id {{PK}},
    name TEXT NOT NULL,
    dob TEXT NOT NULL,
    nationality TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS genres (
    id {{PK}},
    name TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS movies (
    id {{PK}},
    title TEXT NOT NULL UNIQUE,
    detail TEXT NOT NULL,
    director_id BIGINT NOT NULL REFERENCES directors(id),
    creator_id BIGINT,
    like_count INTEGER NOT NULL DEFAULT 0,
    dislike_count INTEGER NOT NULL DEFAULT 0,
    movie_file_path TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movies_created_at ON movies (created_at);

CREATE TABLE IF NOT EXISTS movie_genres (
    movie_id BIGINT NOT NULL,
    genre_id BIGINT NOT NULL,
    PRIMARY KEY (movie_id, genre_id)
);

CREATE TABLE IF NOT EXISTS movie_user_likes (
    movie_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    is_like BOOLEAN NOT NULL,
    PRIMARY KEY (movie_id, user_id)
);

CREATE TABLE IF NOT EXISTS outbox (
    id TEXT PRIMARY KEY,
    aggregate_type TEXT NOT NULL,
    aggregate_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    payload {{JSON}} NOT NULL,
    created_at TEXT NOT NULL,
    processed BOOLEAN NOT NULL DEFAULT FALSE
);
`

// Schema devuelve el DDL del dialecto.
// movie_genres.genre_id no lleva FK: los géneros pueden vivir en MongoDB.
func Schema(dialect Dialect) string {
	pk, jsonType := "INTEGER PRIMARY KEY AUTOINCREMENT", "TEXT"
	if dialect == Postgres {
		pk, jsonType = "BIGSERIAL PRIMARY KEY", "JSONB"
	}
	return strings.NewReplacer("{{PK}}", pk, "{{JSON}}", jsonType).Replace(schemaTemplate)
}

// InitSchema crea las tablas si no existen.
func InitSchema(ctx context.Context, conn *sql.DB, dialect Dialect) error {
	for _, stmt := range strings.Split(Schema(dialect), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
