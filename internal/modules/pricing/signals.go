package pricing

import (
	"context"
	"time"

	"farmlink/internal/types"
)

// PeakWindow is a half-open [Start, End) range of local clock hours.
type PeakWindow struct {
	Start int
	End   int
}

func DefaultPeakWindows() []PeakWindow {
	return []PeakWindow{{Start: 7, End: 9}, {Start: 17, End: 19}}
}

// PaceEstimator derives trip duration from distance with a rush-hour slowdown.
type PaceEstimator struct {
	MinutesPerKm float64
	PeakFactor   float64
	Peaks        []PeakWindow
	Location     *time.Location
	Now          func() time.Time
}

func (p PaceEstimator) DurationMinutes(_ context.Context, distanceKm float64) (float64, error) {
	minutes := distanceKm * p.MinutesPerKm
	if p.PeakFactor > 0 && p.inPeak() {
		minutes *= p.PeakFactor
	}
	return minutes, nil
}

func (p PaceEstimator) inPeak() bool {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	t := now()
	if p.Location != nil {
		t = t.In(p.Location)
	}
	h := t.Hour()
	for _, w := range p.Peaks {
		if h >= w.Start && h < w.End {
			return true
		}
	}
	return false
}

// StaticSurge always reports the same multiplier.
type StaticSurge float64

func (s StaticSurge) Multiplier(context.Context, types.Location) (float64, error) {
	return float64(s), nil
}
