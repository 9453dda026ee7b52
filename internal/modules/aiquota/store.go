package aiquota

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles classifier_usage persistence.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Consume atomically checks the monthly quota and deducts one call.
// The counter is reset to allowance when last_reset_month is behind month.
// Returns ErrQuotaExceeded when no row is updated (quota exhausted or user absent).
func (s *Store) Consume(ctx context.Context, uid, month string, allowance int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE classifier_usage SET
			calls_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE calls_remaining - 1 END,
			last_reset_month = $1
		WHERE uid = $3 AND (last_reset_month < $1 OR calls_remaining > 0)
	`, month, allowance, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// EnsureUser inserts a fresh allowance row for uid; existing rows are left alone.
func (s *Store) EnsureUser(ctx context.Context, uid, month string, allowance int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO classifier_usage (uid, calls_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, allowance, month)
	return err
}

func (s *Store) Remaining(ctx context.Context, uid, month string, allowance int) (int, error) {
	var remaining int
	err := s.db.QueryRow(ctx, `
		SELECT CASE WHEN last_reset_month < $2 THEN $3 ELSE calls_remaining END
		FROM classifier_usage
		WHERE uid = $1
	`, uid, month, allowance).Scan(&remaining)
	if err != nil {
		return 0, err
	}
	return remaining, nil
}
