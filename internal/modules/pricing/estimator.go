// README: Fare estimator turns a trip request into an itemised fare.
package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"farmlink/internal/types"
)

// DistanceCalculator resolves the trip distance in kilometres.
type DistanceCalculator interface {
	DistanceKm(ctx context.Context, pickup, destination types.Location) (float64, error)
}

// DurationEstimator turns a distance into an expected trip duration in minutes.
type DurationEstimator interface {
	DurationMinutes(ctx context.Context, distanceKm float64) (float64, error)
}

// SurgeSource reports the demand multiplier at a pickup point. 1.0 means no surge.
type SurgeSource interface {
	Multiplier(ctx context.Context, pickup types.Location) (float64, error)
}

// Estimator holds no mutable state and is safe for concurrent use.
type Estimator struct {
	distance DistanceCalculator
	duration DurationEstimator
	surge    SurgeSource
	policy   Policy
}

func NewEstimator(distance DistanceCalculator, duration DurationEstimator, surge SurgeSource, policy Policy) *Estimator {
	if policy.Rates == nil {
		policy.Rates = DefaultRates()
	}
	return &Estimator{distance: distance, duration: duration, surge: surge, policy: policy}
}

func (e *Estimator) Estimate(ctx context.Context, req EstimateRequest) (FareBreakdown, error) {
	if err := req.Pickup.Validate(); err != nil {
		return FareBreakdown{}, fmt.Errorf("pickup: %w", err)
	}
	if err := req.Destination.Validate(); err != nil {
		return FareBreakdown{}, fmt.Errorf("destination: %w", err)
	}

	distanceKm, err := e.distance.DistanceKm(ctx, req.Pickup, req.Destination)
	if err != nil {
		return FareBreakdown{}, fmt.Errorf("distance: %w", err)
	}
	durationMin, err := e.duration.DurationMinutes(ctx, distanceKm)
	if err != nil {
		return FareBreakdown{}, fmt.Errorf("duration: %w", err)
	}
	surge, err := e.surge.Multiplier(ctx, req.Pickup)
	if err != nil {
		return FareBreakdown{}, fmt.Errorf("surge: %w", err)
	}

	return e.Compute(req.RideClass, distanceKm, durationMin, surge)
}

// Compute applies the pricing formula to already-resolved signals.
func (e *Estimator) Compute(rideClass string, distanceKm, durationMin, surge float64) (FareBreakdown, error) {
	if !finite(distanceKm) || distanceKm < 0 {
		return FareBreakdown{}, fmt.Errorf("%w: distance %v km", ErrInvalidInput, distanceKm)
	}
	if !finite(durationMin) || durationMin < 0 {
		return FareBreakdown{}, fmt.Errorf("%w: duration %v min", ErrInvalidInput, durationMin)
	}
	if !finite(surge) {
		return FareBreakdown{}, fmt.Errorf("%w: surge multiplier %v", ErrInvalidInput, surge)
	}
	if surge < 1 {
		surge = 1
	}

	class, rate := e.policy.Rates.Lookup(rideClass)
	one := decimal.NewFromInt(1)

	distanceFare := decimal.NewFromFloat(distanceKm).Mul(rate.PerKm)
	timeFare := decimal.NewFromFloat(durationMin).Mul(rate.PerMinute)
	subtotal := rate.BaseFare.Add(distanceFare).Add(timeFare)

	surgeFare := subtotal.Mul(decimal.NewFromFloat(surge).Sub(one))
	withSurge := subtotal.Add(surgeFare)

	serviceFee := withSurge.Mul(e.policy.ServiceFeeRate)
	taxes := withSurge.Add(serviceFee).Mul(e.policy.TaxRate)
	total := withSurge.Add(serviceFee).Add(taxes)

	return FareBreakdown{
		RideClass:                class,
		BaseFare:                 rate.BaseFare,
		DistanceFare:             distanceFare,
		TimeFare:                 timeFare,
		SurgeFare:                surgeFare,
		ServiceFee:               serviceFee,
		Taxes:                    taxes,
		TotalEstimate:            total,
		SurgeMultiplier:          surge,
		EstimatedDistanceKm:      distanceKm,
		EstimatedDurationMinutes: durationMin,
		Breakdown: []LineItem{
			{Description: "Base Fare", Amount: rate.BaseFare},
			{Description: "Distance", Amount: distanceFare},
			{Description: "Time", Amount: timeFare},
			{Description: "Surge Pricing", Amount: surgeFare},
			{Description: "Service Fee", Amount: serviceFee},
			{Description: "Taxes", Amount: taxes},
		},
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
