package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-relay/internal/domain"
)

// MessageLogRepository stores the append-only relay audit trail.
type MessageLogRepository interface {
	Append(ctx context.Context, entry *domain.MessageLogEntry) error
}

type messageLogRepository struct {
	pool *pgxpool.Pool
}

// NewMessageLogRepository builds repository.
func NewMessageLogRepository(pool *pgxpool.Pool) MessageLogRepository {
	return &messageLogRepository{pool: pool}
}

func (r *messageLogRepository) Append(ctx context.Context, entry *domain.MessageLogEntry) error {
	const query = `
        INSERT INTO message_log (ticket_id, direction, payload)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Direction,
		entry.Payload.Encode(),
	).Scan(&entry.ID, &entry.CreatedAt)
}
