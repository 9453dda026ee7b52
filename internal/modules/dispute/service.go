// README: Dispute service classifies, applies the resolution policy, persists and audits.
package dispute

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farmlink/internal/ai"
	"farmlink/internal/types"
)

type Store interface {
	// CreateFiled persists a new dispute, its audit entry and an optional refund atomically.
	CreateFiled(ctx context.Context, d *Dispute, audit *AuditEntry, refund *RefundRequest) error
	Get(ctx context.Context, id types.ID) (*Dispute, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Dispute, error)
	ListBetween(ctx context.Context, from, to *time.Time) ([]Dispute, error)
	UpdateStatus(ctx context.Context, ids []types.ID, status Status, by types.ID, at time.Time) ([]types.ID, error)
	AppendAudit(ctx context.Context, e *AuditEntry) error
}

// Notifier delivers status changes to users. Delivery failures never fail the operation.
type Notifier interface {
	NotifyDispute(ctx context.Context, n Notice) error
}

// Allowance meters classifier calls per user.
type Allowance interface {
	Consume(ctx context.Context, uid string) error
}

type Service struct {
	store      Store
	classifier ai.DisputeClassifier
	allowance  Allowance
	policy     Policy
	notifier   Notifier
	log        *zap.Logger
	now        func() time.Time
}

func NewService(store Store, classifier ai.DisputeClassifier, allowance Allowance, policy Policy, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:      store,
		classifier: classifier,
		allowance:  allowance,
		policy:     policy,
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) notify(ctx context.Context, d *Dispute) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyDispute(ctx, Notice{
		UserID:              d.UserID,
		DisputeID:           d.ID,
		Status:              d.Status,
		CompensationPercent: d.CompensationPercent,
	}); err != nil {
		s.log.Warn("dispute notification failed", zap.String("dispute_id", string(d.ID)), zap.Error(err))
	}
}

func (s *Service) Policy() Policy {
	return s.policy
}

type FileCommand struct {
	UserID       types.ID
	RideID       types.ID
	Description  string
	EvidenceURLs []string
}

type FileResult struct {
	Dispute        *Dispute
	Classification ai.Classification
	Resolution     Resolution
}

func (s *Service) File(ctx context.Context, cmd FileCommand) (*FileResult, error) {
	cmd.Description = strings.TrimSpace(cmd.Description)
	if cmd.UserID == "" || cmd.RideID == "" || cmd.Description == "" {
		return nil, ErrBadRequest
	}

	if s.allowance != nil {
		if err := s.allowance.Consume(ctx, string(cmd.UserID)); err != nil {
			return nil, err
		}
	}

	cls, err := s.classifier.ClassifyDispute(ctx, cmd.Description)
	if err != nil {
		return nil, fmt.Errorf("classify dispute: %w", err)
	}

	now := s.now().UTC()
	res := s.policy.Decide(now, cls.Severity, cls.Category, cls.Confidence, cls.CompensationPercent)

	status := StatusPending
	if res.CanAutoResolve {
		status = StatusAutoResolved
	}
	d := &Dispute{
		ID:                  types.ID(uuid.NewString()),
		UserID:              cmd.UserID,
		RideID:              cmd.RideID,
		Description:         cmd.Description,
		EvidenceURLs:        cmd.EvidenceURLs,
		Category:            cls.Category,
		Severity:            cls.Severity,
		Confidence:          cls.Confidence,
		RecommendedAction:   cls.RecommendedAction,
		Status:              status,
		TargetResolutionAt:  res.TargetResolutionDeadline,
		CanAutoResolve:      res.CanAutoResolve,
		CompensationPercent: res.CompensationPercent,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if res.CanAutoResolve {
		d.ResolvedAt = &now
	}
	audit := &AuditEntry{
		ActorID:    cmd.UserID,
		Action:     "dispute_filed",
		TargetType: "disputes",
		TargetIDs:  []types.ID{d.ID},
		Changes: map[string]any{
			"category": d.Category,
			"severity": d.Severity,
			"status":   string(d.Status),
		},
		CreatedAt: now,
	}
	var refund *RefundRequest
	if res.CanAutoResolve {
		refund = &RefundRequest{
			DisputeID:           d.ID,
			RideID:              d.RideID,
			UserID:              d.UserID,
			CompensationPercent: *res.CompensationPercent,
			CreatedAt:           now,
		}
	}
	if err := s.store.CreateFiled(ctx, d, audit, refund); err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}

	s.notify(ctx, d)

	s.log.Info("dispute filed",
		zap.String("dispute_id", string(d.ID)),
		zap.String("category", d.Category),
		zap.String("severity", d.Severity),
		zap.Bool("auto_resolved", res.CanAutoResolve),
		zap.Time("deadline", res.TargetResolutionDeadline),
	)
	return &FileResult{Dispute: d, Classification: *cls, Resolution: res}, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Dispute, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	return s.store.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID types.ID) ([]Dispute, error) {
	if userID == "" {
		return nil, ErrBadRequest
	}
	return s.store.ListByUser(ctx, userID)
}

type BulkUpdateCommand struct {
	AdminID types.ID
	IDs     []types.ID
	Status  Status
}

// BulkUpdateStatus changes the status of many disputes and records one audit entry.
func (s *Service) BulkUpdateStatus(ctx context.Context, cmd BulkUpdateCommand) ([]types.ID, error) {
	if cmd.AdminID == "" || len(cmd.IDs) == 0 || !cmd.Status.Valid() {
		return nil, ErrBadRequest
	}
	now := s.now().UTC()
	updated, err := s.store.UpdateStatus(ctx, cmd.IDs, cmd.Status, cmd.AdminID, now)
	if err != nil {
		return nil, fmt.Errorf("bulk update: %w", err)
	}
	if err := s.store.AppendAudit(ctx, &AuditEntry{
		ActorID:    cmd.AdminID,
		Action:     "bulk_update",
		TargetType: "disputes",
		TargetIDs:  updated,
		Changes:    map[string]any{"status": string(cmd.Status)},
		CreatedAt:  now,
	}); err != nil {
		s.log.Error("append audit failed", zap.String("admin_id", string(cmd.AdminID)), zap.Error(err))
	}
	if s.notifier != nil {
		for _, id := range updated {
			d, err := s.store.Get(ctx, id)
			if err != nil {
				s.log.Warn("load dispute for notification", zap.String("dispute_id", string(id)), zap.Error(err))
				continue
			}
			s.notify(ctx, d)
		}
	}
	return updated, nil
}

func (s *Service) Analytics(ctx context.Context, from, to *time.Time) (Analytics, error) {
	disputes, err := s.store.ListBetween(ctx, from, to)
	if err != nil {
		return Analytics{}, err
	}
	return Summarize(disputes, s.now()), nil
}
