package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-relay/internal/domain"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// TicketRepository encapsulates ticket persistence.
//
// Create always inserts a new row, even when the user already has an open
// ticket; FindActiveByUser resolves the ambiguity deterministically by
// preferring the newest bound row.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	FindActiveByUser(ctx context.Context, userID int64) (*domain.Ticket, error)
	FindByThread(ctx context.Context, threadID int64) (*domain.Ticket, error)
	BindThread(ctx context.Context, ticketID, workspaceID, threadID int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_key, user_id, display_name, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Key,
		ticket.UserID,
		ticket.DisplayName,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) FindActiveByUser(ctx context.Context, userID int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_key, user_id, display_name, status, workspace_id, thread_id, created_at
        FROM tickets
        WHERE user_id=$1 AND thread_id IS NOT NULL
        ORDER BY created_at DESC, id DESC
        LIMIT 1`
	return r.fetchSingle(ctx, query, userID)
}

func (r *ticketRepository) FindByThread(ctx context.Context, threadID int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_key, user_id, display_name, status, workspace_id, thread_id, created_at
        FROM tickets WHERE thread_id=$1`
	return r.fetchSingle(ctx, query, threadID)
}

func (r *ticketRepository) BindThread(ctx context.Context, ticketID, workspaceID, threadID int64) error {
	const query = `
        UPDATE tickets SET workspace_id=$1, thread_id=$2, status=$3
        WHERE id=$4 AND thread_id IS NULL`
	cmd, err := r.pool.Exec(ctx, query, workspaceID, threadID, domain.TicketStatusOpen, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.Key,
		&ticket.UserID,
		&ticket.DisplayName,
		&ticket.Status,
		&ticket.WorkspaceID,
		&ticket.ThreadID,
		&ticket.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}
