// README: Monthly allowance of dispute-classifier calls per user.
package aiquota

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Counter is the persistence contract; *Store satisfies it.
type Counter interface {
	Consume(ctx context.Context, uid, month string, allowance int) error
	EnsureUser(ctx context.Context, uid, month string, allowance int) error
	Remaining(ctx context.Context, uid, month string, allowance int) (int, error)
}

type Service struct {
	store     Counter
	allowance int
	now       func() time.Time
}

// NewService creates a Service; a non-positive allowance falls back to DefaultAllowance.
func NewService(store Counter, allowance int) *Service {
	if allowance <= 0 {
		allowance = DefaultAllowance
	}
	return &Service{store: store, allowance: allowance, now: time.Now}
}

// Consume deducts one classifier call from the user's monthly allowance.
// A missing row is initialised and the call retried once.
func (s *Service) Consume(ctx context.Context, uid string) error {
	month := s.month()
	err := s.store.Consume(ctx, uid, month, s.allowance)
	if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	if initErr := s.store.EnsureUser(ctx, uid, month, s.allowance); initErr != nil {
		return initErr
	}
	return s.store.Consume(ctx, uid, month, s.allowance)
}

// Remaining reports the calls left this month; unknown users have the full allowance.
func (s *Service) Remaining(ctx context.Context, uid string) (int, error) {
	n, err := s.store.Remaining(ctx, uid, s.month(), s.allowance)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.allowance, nil
	}
	return n, err
}

func (s *Service) month() string {
	return s.now().UTC().Format(monthLayout)
}
