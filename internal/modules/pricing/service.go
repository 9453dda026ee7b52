// README: Pricing service runs the estimator and keeps a record of issued quotes.
package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farmlink/internal/types"
)

type QuoteStore interface {
	SaveQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, id types.ID) (*Quote, error)
}

// DemandRecorder is notified of every quote so the surge signal can track demand.
type DemandRecorder interface {
	RecordDemand(ctx context.Context, pickup types.Location) error
}

type Service struct {
	estimator *Estimator
	store     QuoteStore
	demand    DemandRecorder
	log       *zap.Logger
	currency  string
	now       func() time.Time
}

// NewService wires the quote flow. store and demand may be nil.
func NewService(estimator *Estimator, store QuoteStore, demand DemandRecorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		estimator: estimator,
		store:     store,
		demand:    demand,
		log:       log,
		currency:  types.DefaultCurrency,
		now:       time.Now,
	}
}

// WithCurrency sets the ISO 4217 code stamped on quotes. Empty keeps the default.
func (s *Service) WithCurrency(code string) *Service {
	if code != "" {
		s.currency = code
	}
	return s
}

func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (FareBreakdown, error) {
	return s.estimator.Estimate(ctx, req)
}

// Quote estimates the fare and records it. Bookkeeping failures are logged, never returned.
func (s *Service) Quote(ctx context.Context, userID types.ID, req EstimateRequest) (*Quote, error) {
	fare, err := s.estimator.Estimate(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.demand != nil {
		if err := s.demand.RecordDemand(ctx, req.Pickup); err != nil {
			s.log.Warn("record demand failed", zap.Error(err))
		}
	}

	q := &Quote{
		ID:          types.ID(uuid.NewString()),
		UserID:      userID,
		Pickup:      req.Pickup,
		Destination: req.Destination,
		Fare:        fare,
		Currency:    s.currency,
		CreatedAt:   s.now().UTC(),
	}
	if s.store != nil {
		if err := s.store.SaveQuote(ctx, q); err != nil {
			s.log.Error("save quote failed", zap.String("quote_id", string(q.ID)), zap.Error(err))
		}
	}

	s.log.Debug("fare quoted",
		zap.String("quote_id", string(q.ID)),
		zap.String("ride_class", string(fare.RideClass)),
		zap.Float64("distance_km", fare.EstimatedDistanceKm),
		zap.Float64("surge", fare.SurgeMultiplier),
		zap.String("total", fare.TotalEstimate.String()),
	)
	return q, nil
}

func (s *Service) GetQuote(ctx context.Context, id types.ID) (*Quote, error) {
	if s.store == nil {
		return nil, ErrNotFound
	}
	return s.store.GetQuote(ctx, id)
}
