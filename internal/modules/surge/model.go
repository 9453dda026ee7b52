// README: Surge signal derived from demand (quotes) and supply (driver pings) per geohash cell.
package surge

import "time"

type Kind string

const (
	KindDemand Kind = "demand"
	KindSupply Kind = "supply"
)

type Config struct {
	Precision     uint
	Window        time.Duration
	Sensitivity   float64
	MaxMultiplier float64
}

func DefaultConfig() Config {
	return Config{
		Precision:     6,
		Window:        5 * time.Minute,
		Sensitivity:   0.25,
		MaxMultiplier: 3.0,
	}
}

// Counts is a snapshot of one cell in one window.
type Counts struct {
	Demand int64
	Supply int64
}
