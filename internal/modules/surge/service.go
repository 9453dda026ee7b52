// README: Surge service records demand/supply and serves the pricing multiplier.
package surge

import (
	"context"
	"time"

	"github.com/mmcloughlin/geohash"
	"go.uber.org/zap"

	"farmlink/internal/types"
)

type Counter interface {
	Incr(ctx context.Context, kind Kind, cell string, bucket int64) error
	Counts(ctx context.Context, cell string, bucket int64) (Counts, error)
}

type Service struct {
	store Counter
	cfg   Config
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Counter, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.Precision == 0 {
		cfg.Precision = DefaultConfig().Precision
	}
	return &Service{store: store, cfg: cfg, log: log, now: time.Now}
}

func (s *Service) cell(loc types.Location) string {
	return geohash.EncodeWithPrecision(loc.Lat, loc.Lng, s.cfg.Precision)
}

func (s *Service) bucket() int64 {
	return s.now().UnixNano() / int64(s.cfg.Window)
}

func (s *Service) RecordDemand(ctx context.Context, pickup types.Location) error {
	return s.record(ctx, KindDemand, pickup)
}

func (s *Service) RecordSupply(ctx context.Context, pos types.Location) error {
	return s.record(ctx, KindSupply, pos)
}

func (s *Service) record(ctx context.Context, kind Kind, loc types.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	return s.store.Incr(ctx, kind, s.cell(loc), s.bucket())
}

// Multiplier never fails on counter errors: surge is advisory, so it degrades to 1.0.
func (s *Service) Multiplier(ctx context.Context, pickup types.Location) (float64, error) {
	if err := pickup.Validate(); err != nil {
		return 0, err
	}
	cell := s.cell(pickup)
	counts, err := s.store.Counts(ctx, cell, s.bucket())
	if err != nil {
		s.log.Warn("surge counts unavailable, using 1.0", zap.String("cell", cell), zap.Error(err))
		return 1, nil
	}
	return Compute(counts, s.cfg.Sensitivity, s.cfg.MaxMultiplier), nil
}
