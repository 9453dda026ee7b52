package surge

import "testing"

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		counts Counts
		want   float64
	}{
		{name: "no demand", counts: Counts{Demand: 0, Supply: 4}, want: 1},
		{name: "balanced", counts: Counts{Demand: 6, Supply: 6}, want: 1},
		{name: "oversupplied never discounts", counts: Counts{Demand: 5, Supply: 10}, want: 1},
		{name: "double demand", counts: Counts{Demand: 10, Supply: 5}, want: 1.25},
		{name: "no drivers counts as one", counts: Counts{Demand: 3, Supply: 0}, want: 1.5},
		{name: "capped", counts: Counts{Demand: 100, Supply: 1}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.counts, 0.25, 3); got != tt.want {
				t.Errorf("Compute(%+v) = %v, want %v", tt.counts, got, tt.want)
			}
		})
	}
}
