package surge

import "math"

// Compute maps demand and supply onto a multiplier in [1, max].
func Compute(c Counts, sensitivity, maxMultiplier float64) float64 {
	if c.Demand <= 0 {
		return 1
	}
	supply := c.Supply
	if supply < 1 {
		supply = 1
	}
	ratio := float64(c.Demand) / float64(supply)
	m := 1 + sensitivity*(ratio-1)
	if m < 1 {
		m = 1
	}
	if maxMultiplier >= 1 && m > maxMultiplier {
		m = maxMultiplier
	}
	return math.Round(m*100) / 100
}
