package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/davicafu/cinelab/internal/shared/domain"
	"github.com/google/uuid"
)

// OutboxRepoSQL implementa domain.OutboxRepository para SQLite y PostgreSQL.
type OutboxRepoSQL struct {
	db      *sql.DB
	dialect Dialect
}

func NewOutboxRepoSQL(db *sql.DB, dialect Dialect) *OutboxRepoSQL {
	return &OutboxRepoSQL{db: db, dialect: dialect}
}

// FetchPendingOutbox obtiene los eventos no procesados, los más antiguos primero.
func (r *OutboxRepoSQL) FetchPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(
		`SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
         FROM outbox
         WHERE processed = ?
         ORDER BY created_at
         LIMIT ?`), false, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var (
			evt       domain.OutboxEvent
			payload   []byte
			createdAt string
		)
		if err := rows.Scan(&evt.ID, &evt.AggregateType, &evt.AggregateID, &evt.EventType, &payload, &createdAt); err != nil {
			return nil, err
		}

		if evt.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &evt.Payload); err != nil {
			return nil, fmt.Errorf("invalid JSON payload in outbox row %s: %w", evt.ID, err)
		}

		events = append(events, evt)
	}

	return events, rows.Err()
}

// MarkOutboxProcessed marca un evento como publicado.
func (r *OutboxRepoSQL) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`UPDATE outbox SET processed = ? WHERE id = ?`), true, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get RowsAffected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("outbox event not found: %s", id)
	}
	return nil
}

// InsertOutboxTx guarda el evento dentro de la transacción del agregado.
func InsertOutboxTx(ctx context.Context, tx *sql.Tx, dialect Dialect, evt domain.OutboxEvent) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx, dialect.Rebind(
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		evt.ID, evt.AggregateType, evt.AggregateID, evt.EventType, string(payload), FormatTime(evt.CreatedAt), false,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// Verificación en tiempo de compilación.
var _ domain.OutboxRepository = (*OutboxRepoSQL)(nil)
