// README: Dispute store backed by PostgreSQL (disputes, audit log, refund queue).
package dispute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"farmlink/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const disputeColumns = `
	id, user_id, ride_id, description, evidence_urls, category, severity, confidence,
	recommended_action, status, target_resolution_at, can_auto_resolve, compensation_percent,
	created_at, updated_at, updated_by, resolved_at`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CreateFiled writes a new dispute with its audit entry and, when given, its refund request
// in one transaction.
func (s *PGStore) CreateFiled(ctx context.Context, d *Dispute, audit *AuditEntry, refund *RefundRequest) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if err := insertDispute(ctx, tx, d); err != nil {
			return fmt.Errorf("insert dispute: %w", err)
		}
		if err := insertAudit(ctx, tx, audit); err != nil {
			return fmt.Errorf("insert audit: %w", err)
		}
		if refund == nil {
			return nil
		}
		if err := insertRefund(ctx, tx, refund); err != nil {
			return fmt.Errorf("enqueue refund: %w", err)
		}
		return nil
	})
}

func insertDispute(ctx context.Context, q execer, d *Dispute) error {
	_, err := q.Exec(ctx, `
		INSERT INTO disputes (`+disputeColumns+`
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17
		)`,
		string(d.ID), string(d.UserID), string(d.RideID), d.Description, d.EvidenceURLs,
		d.Category, d.Severity, d.Confidence,
		d.RecommendedAction, string(d.Status), d.TargetResolutionAt, d.CanAutoResolve, d.CompensationPercent,
		d.CreatedAt, d.UpdatedAt, toStringPtr(d.UpdatedBy), d.ResolvedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Dispute, error) {
	row := s.db.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, string(id))
	d, err := scanDispute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID types.ID) ([]Dispute, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+disputeColumns+`
		FROM disputes
		WHERE user_id = $1
		ORDER BY created_at DESC`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	return collectDisputes(rows)
}

func (s *PGStore) ListBetween(ctx context.Context, from, to *time.Time) ([]Dispute, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+disputeColumns+`
		FROM disputes
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY created_at`, from, to,
	)
	if err != nil {
		return nil, err
	}
	return collectDisputes(rows)
}

func (s *PGStore) UpdateStatus(ctx context.Context, ids []types.ID, status Status, by types.ID, at time.Time) ([]types.ID, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	rows, err := s.db.Query(ctx, `
		UPDATE disputes
		SET status = $1::text,
		    updated_at = $2,
		    updated_by = $3,
		    resolved_at = CASE
		        WHEN $1::text IN ('resolved', 'auto_resolved') THEN COALESCE(resolved_at, $2)
		        ELSE NULL
		    END
		WHERE id = ANY($4)
		RETURNING id`,
		string(status), at, string(by), raw,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.ID, error) {
		var id string
		err := row.Scan(&id)
		return types.ID(id), err
	})
}

func (s *PGStore) AppendAudit(ctx context.Context, e *AuditEntry) error {
	return insertAudit(ctx, s.db, e)
}

func insertAudit(ctx context.Context, q execer, e *AuditEntry) error {
	targets := make([]string, len(e.TargetIDs))
	for i, id := range e.TargetIDs {
		targets[i] = string(id)
	}
	_, err := q.Exec(ctx, `
		INSERT INTO dispute_audit_logs (actor_id, action_type, target_type, target_ids, changes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.ActorID), e.Action, e.TargetType, targets, e.Changes, e.CreatedAt,
	)
	return err
}

func insertRefund(ctx context.Context, q execer, r *RefundRequest) error {
	_, err := q.Exec(ctx, `
		INSERT INTO refund_requests (dispute_id, ride_id, user_id, compensation_percent, status, created_at)
		VALUES ($1, $2, $3, $4, 'queued', $5)
		ON CONFLICT (dispute_id) DO NOTHING`,
		string(r.DisputeID), string(r.RideID), string(r.UserID), r.CompensationPercent, r.CreatedAt,
	)
	return err
}

func collectDisputes(rows pgx.Rows) ([]Dispute, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Dispute, error) {
		d, err := scanDispute(row)
		if err != nil {
			return Dispute{}, err
		}
		return *d, nil
	})
}

func scanDispute(row pgx.Row) (*Dispute, error) {
	var d Dispute
	var status string
	var updatedBy *string
	err := row.Scan(
		&d.ID, &d.UserID, &d.RideID, &d.Description, &d.EvidenceURLs, &d.Category, &d.Severity, &d.Confidence,
		&d.RecommendedAction, &status, &d.TargetResolutionAt, &d.CanAutoResolve, &d.CompensationPercent,
		&d.CreatedAt, &d.UpdatedAt, &updatedBy, &d.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = Status(status)
	if updatedBy != nil {
		id := types.ID(*updatedBy)
		d.UpdatedBy = &id
	}
	return &d, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
