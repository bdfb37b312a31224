package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository manages the administrator allow-list.
type AdminRepository interface {
	// Add inserts an identity into the allow-list. Duplicate inserts are
	// a no-op.
	Add(ctx context.Context, chatID int64) error
	Exists(ctx context.Context, chatID int64) (bool, error)
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository builds repository.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Add(ctx context.Context, chatID int64) error {
	const query = `INSERT INTO admins (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, chatID)
	return err
}

func (r *adminRepository) Exists(ctx context.Context, chatID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM admins WHERE chat_id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, chatID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
