package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"farmlink/internal/types"
)

type fixedDistance float64

func (d fixedDistance) DistanceKm(context.Context, types.Location, types.Location) (float64, error) {
	return float64(d), nil
}

type fixedDuration float64

func (d fixedDuration) DurationMinutes(context.Context, float64) (float64, error) {
	return float64(d), nil
}

type failingDistance struct{ err error }

func (f failingDistance) DistanceKm(context.Context, types.Location, types.Location) (float64, error) {
	return 0, f.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestEstimator(km, minutes, surge float64) *Estimator {
	return NewEstimator(fixedDistance(km), fixedDuration(minutes), StaticSurge(surge), DefaultPolicy())
}

var (
	farmGate = types.Location{Lat: 25.0340, Lng: 121.5645}
	market   = types.Location{Lat: 25.0478, Lng: 121.5170}
)

func TestEstimator_EconomyWithSurge(t *testing.T) {
	e := newTestEstimator(5, 15, 1.2)

	got, err := e.Estimate(context.Background(), EstimateRequest{Pickup: farmGate, Destination: market, RideClass: "economy"})
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	want := map[string]decimal.Decimal{
		"base":     dec("5"),
		"distance": dec("7.5"),
		"time":     dec("3"),
		"surge":    dec("3.1"),
		"service":  dec("1.86"),
		"taxes":    dec("1.023"),
		"total":    dec("21.483"),
	}
	gotAmounts := map[string]decimal.Decimal{
		"base":     got.BaseFare,
		"distance": got.DistanceFare,
		"time":     got.TimeFare,
		"surge":    got.SurgeFare,
		"service":  got.ServiceFee,
		"taxes":    got.Taxes,
		"total":    got.TotalEstimate,
	}
	for k, w := range want {
		if !gotAmounts[k].Equal(w) {
			t.Errorf("%s = %s, want %s", k, gotAmounts[k], w)
		}
	}
	if got.SurgeMultiplier != 1.2 || got.EstimatedDistanceKm != 5 || got.EstimatedDurationMinutes != 15 {
		t.Errorf("signals = (%v, %v, %v), want (1.2, 5, 15)", got.SurgeMultiplier, got.EstimatedDistanceKm, got.EstimatedDurationMinutes)
	}
}

func TestEstimator_RideClasses(t *testing.T) {
	tests := []struct {
		class     string
		wantClass RideClass
		wantTotal string
	}{
		// (8 + 10 + 3) * 1.1 * 1.05
		{class: "comfort", wantClass: RideClassComfort, wantTotal: "24.255"},
		// (12 + 15 + 5) * 1.1 * 1.05
		{class: "premium", wantClass: RideClassPremium, wantTotal: "36.96"},
		// (5 + 7.5 + 2) * 1.1 * 1.05
		{class: "economy", wantClass: RideClassEconomy, wantTotal: "16.7475"},
	}
	e := newTestEstimator(5, 10, 1)
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got, err := e.Compute(tt.class, 5, 10, 1)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if got.RideClass != tt.wantClass {
				t.Errorf("RideClass = %s, want %s", got.RideClass, tt.wantClass)
			}
			if !got.TotalEstimate.Equal(dec(tt.wantTotal)) {
				t.Errorf("TotalEstimate = %s, want %s", got.TotalEstimate, tt.wantTotal)
			}
		})
	}
}

func TestEstimator_TotalIsExactSumOfComponents(t *testing.T) {
	e := newTestEstimator(0, 0, 1)
	for _, class := range []string{"economy", "comfort", "premium", "tractor"} {
		for _, km := range []float64{0, 0.1, 1.37, 7.25, 42.9} {
			for _, minutes := range []float64{0, 0.5, 13.3, 61} {
				for _, surge := range []float64{0.4, 1, 1.15, 2.35} {
					got, err := e.Compute(class, km, minutes, surge)
					if err != nil {
						t.Fatalf("Compute(%s, %v, %v, %v) error = %v", class, km, minutes, surge, err)
					}
					sum := got.BaseFare.Add(got.DistanceFare).Add(got.TimeFare).
						Add(got.SurgeFare).Add(got.ServiceFee).Add(got.Taxes)
					if !sum.Equal(got.TotalEstimate) {
						t.Errorf("Compute(%s, %v, %v, %v): sum %s != total %s", class, km, minutes, surge, sum, got.TotalEstimate)
					}
					var items decimal.Decimal
					for _, it := range got.Breakdown {
						items = items.Add(it.Amount)
					}
					if !items.Equal(got.TotalEstimate) {
						t.Errorf("breakdown sum %s != total %s", items, got.TotalEstimate)
					}
				}
			}
		}
	}
}

func TestEstimator_ZeroDistanceIsMinimumFare(t *testing.T) {
	e := newTestEstimator(0, 0, 1)
	got, err := e.Estimate(context.Background(), EstimateRequest{Pickup: farmGate, Destination: farmGate, RideClass: "economy"})
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if !got.DistanceFare.IsZero() || !got.TimeFare.IsZero() || !got.SurgeFare.IsZero() {
		t.Errorf("expected zero distance/time/surge fares, got %s/%s/%s", got.DistanceFare, got.TimeFare, got.SurgeFare)
	}
	want := dec("5").Mul(dec("1.10")).Mul(dec("1.05"))
	if !got.TotalEstimate.Equal(want) {
		t.Errorf("TotalEstimate = %s, want %s", got.TotalEstimate, want)
	}
}

func TestEstimator_SurgeBelowOneIsClamped(t *testing.T) {
	e := newTestEstimator(0, 0, 1)
	for _, surge := range []float64{0, 0.5, 0.99, -3} {
		got, err := e.Compute("premium", 3, 9, surge)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		if got.SurgeMultiplier != 1 {
			t.Errorf("surge %v: multiplier = %v, want 1", surge, got.SurgeMultiplier)
		}
		if !got.SurgeFare.IsZero() {
			t.Errorf("surge %v: surge fare = %s, want 0", surge, got.SurgeFare)
		}
	}
}

func TestEstimator_UnknownClassMatchesEconomy(t *testing.T) {
	e := newTestEstimator(0, 0, 1)
	for _, class := range []string{"", "tractor", "Economy", "PREMIUM "} {
		got, err := e.Compute(class, 12.4, 31, 1.3)
		if err != nil {
			t.Fatalf("Compute(%q) error = %v", class, err)
		}
		want, err := e.Compute("economy", 12.4, 31, 1.3)
		if err != nil {
			t.Fatalf("Compute(economy) error = %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Compute(%q) mismatch (-economy +got):\n%s", class, diff)
		}
	}
}

func TestEstimator_BreakdownOrder(t *testing.T) {
	e := newTestEstimator(0, 0, 1)
	got, err := e.Compute("comfort", 2, 4, 1.5)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	var descriptions []string
	for _, it := range got.Breakdown {
		descriptions = append(descriptions, it.Description)
	}
	want := []string{"Base Fare", "Distance", "Time", "Surge Pricing", "Service Fee", "Taxes"}
	if diff := cmp.Diff(want, descriptions); diff != "" {
		t.Errorf("breakdown order mismatch (-want +got):\n%s", diff)
	}
	if !got.Breakdown[3].Amount.Equal(got.SurgeFare) || !got.Breakdown[5].Amount.Equal(got.Taxes) {
		t.Errorf("breakdown amounts do not match components")
	}
}

func TestEstimator_InvalidInput(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		e    *Estimator
		req  EstimateRequest
	}{
		{
			name: "negative distance",
			e:    newTestEstimator(-1, 3, 1),
			req:  EstimateRequest{Pickup: farmGate, Destination: market},
		},
		{
			name: "negative duration",
			e:    newTestEstimator(2, -0.5, 1),
			req:  EstimateRequest{Pickup: farmGate, Destination: market},
		},
		{
			name: "pickup latitude out of range",
			e:    newTestEstimator(2, 6, 1),
			req:  EstimateRequest{Pickup: types.Location{Lat: 123, Lng: 0}, Destination: market},
		},
		{
			name: "destination longitude out of range",
			e:    newTestEstimator(2, 6, 1),
			req:  EstimateRequest{Pickup: farmGate, Destination: types.Location{Lat: 0, Lng: -181}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.e.Estimate(ctx, tt.req)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Estimate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestEstimator_CollaboratorErrorPropagates(t *testing.T) {
	routing := errors.New("routing unavailable")
	e := NewEstimator(failingDistance{err: routing}, fixedDuration(1), StaticSurge(1), DefaultPolicy())
	_, err := e.Estimate(context.Background(), EstimateRequest{Pickup: farmGate, Destination: market})
	if !errors.Is(err, routing) {
		t.Fatalf("Estimate() error = %v, want wrapped routing error", err)
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Fatalf("collaborator failure must not be reported as invalid input")
	}
}

func TestEstimator_ConfigurableFeeAndTax(t *testing.T) {
	policy := DefaultPolicy()
	policy.ServiceFeeRate = dec("0.2")
	policy.TaxRate = decimal.Zero
	e := NewEstimator(fixedDistance(0), fixedDuration(0), StaticSurge(1), policy)

	got, err := e.Compute("economy", 0, 0, 1)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !got.ServiceFee.Equal(dec("1")) || !got.Taxes.IsZero() || !got.TotalEstimate.Equal(dec("6")) {
		t.Errorf("got fee=%s tax=%s total=%s, want 1/0/6", got.ServiceFee, got.Taxes, got.TotalEstimate)
	}
}
