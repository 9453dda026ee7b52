// README: Pricing rate definitions and fare breakdown for each ride class.
package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"farmlink/internal/types"
)

var (
	ErrInvalidInput = types.ErrInvalidInput
	ErrNotFound     = errors.New("quote not found")
)

type RideClass string

const (
	RideClassEconomy RideClass = "economy"
	RideClassComfort RideClass = "comfort"
	RideClassPremium RideClass = "premium"
)

// Rate is the per-class tariff.
type Rate struct {
	BaseFare  decimal.Decimal
	PerKm     decimal.Decimal
	PerMinute decimal.Decimal
}

// LineItem is one row of the itemised fare.
type LineItem struct {
	Description string
	Amount      decimal.Decimal
}

// FareBreakdown is produced fresh per estimate and never mutated.
type FareBreakdown struct {
	RideClass                RideClass
	BaseFare                 decimal.Decimal
	DistanceFare             decimal.Decimal
	TimeFare                 decimal.Decimal
	SurgeFare                decimal.Decimal
	ServiceFee               decimal.Decimal
	Taxes                    decimal.Decimal
	TotalEstimate            decimal.Decimal
	SurgeMultiplier          float64
	EstimatedDistanceKm      float64
	EstimatedDurationMinutes float64
	Breakdown                []LineItem
}

type EstimateRequest struct {
	Pickup      types.Location
	Destination types.Location
	RideClass   string
}

// Quote is a persisted estimate.
type Quote struct {
	ID          types.ID
	UserID      types.ID
	Pickup      types.Location
	Destination types.Location
	Fare        FareBreakdown
	Currency    string
	CreatedAt   time.Time
}
