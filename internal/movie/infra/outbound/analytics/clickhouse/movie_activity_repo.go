package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// MovieActivityRepo implementa MovieAnalyticsRepository sobre ClickHouse.
type MovieActivityRepo struct {
	db *sql.DB
}

func NewMovieActivityRepo(addr string, dbName string) (*MovieActivityRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
	})

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &MovieActivityRepo{db: conn}, nil
}

func (r *MovieActivityRepo) Close() error {
	return r.db.Close()
}

// LogBatch inserta el lote en una sola transacción; ClickHouse lo envía como un bloque.
func (r *MovieActivityRepo) LogBatch(ctx context.Context, activities []movieDomain.MovieActivity) error {
	if len(activities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO movie_activity_log (movie_id, user_id, event_type, title, reaction, like_count, dislike_count, event_time)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, a := range activities {
		if _, err := stmt.ExecContext(
			ctx,
			a.MovieID,
			a.UserID,
			a.EventType,
			a.Title,
			a.Reaction,
			int32(a.LikeCount),
			int32(a.DislikeCount),
			a.EventTime,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for movie %d: %w", a.MovieID, err)
		}
	}

	return tx.Commit()
}

func (r *MovieActivityRepo) GetDailyTrend(ctx context.Context, start, end time.Time) ([]movieDomain.DailyMovieTrend, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			countIf(event_type = 'movie.created') AS created,
			countIf(event_type = 'movie.deleted') AS deleted,
			countIf(event_type = 'movie.liked' AND reaction = 'like') AS likes,
			countIf(event_type = 'movie.liked' AND reaction = 'dislike') AS dislikes
		FROM movie_activity_log
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trends := []movieDomain.DailyMovieTrend{}
	for rows.Next() {
		var (
			trend                             movieDomain.DailyMovieTrend
			created, deleted, likes, dislikes uint64
		)
		if err := rows.Scan(&trend.Day, &created, &deleted, &likes, &dislikes); err != nil {
			return nil, err
		}
		trend.Created, trend.Deleted = int(created), int(deleted)
		trend.Likes, trend.Dislikes = int(likes), int(dislikes)
		trends = append(trends, trend)
	}
	return trends, rows.Err()
}

// InitSchema crea la tabla si no existe. Particionada por mes y ordenada por película.
func (r *MovieActivityRepo) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS movie_activity_log (
			movie_id      Int64,
			user_id       Int64,
			event_type    String,
			title         String,
			reaction      String,
			like_count    Int32,
			dislike_count Int32,
			event_time    DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (movie_id, event_type, event_time);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

var _ movieDomain.MovieAnalyticsRepository = (*MovieActivityRepo)(nil)
