package pricing

import "github.com/shopspring/decimal"

type RateTable map[RideClass]Rate

func DefaultRates() RateTable {
	return RateTable{
		RideClassEconomy: {BaseFare: decimal.NewFromInt(5), PerKm: decimal.RequireFromString("1.5"), PerMinute: decimal.RequireFromString("0.2")},
		RideClassComfort: {BaseFare: decimal.NewFromInt(8), PerKm: decimal.NewFromInt(2), PerMinute: decimal.RequireFromString("0.3")},
		RideClassPremium: {BaseFare: decimal.NewFromInt(12), PerKm: decimal.NewFromInt(3), PerMinute: decimal.RequireFromString("0.5")},
	}
}

// Lookup resolves a raw ride class. Unknown values fall back to economy rather than failing.
func (t RateTable) Lookup(raw string) (RideClass, Rate) {
	class := RideClass(raw)
	if r, ok := t[class]; ok {
		return class, r
	}
	return RideClassEconomy, t[RideClassEconomy]
}

// Policy holds the tariff and the fee/tax rates applied on top of it.
type Policy struct {
	Rates          RateTable
	ServiceFeeRate decimal.Decimal
	TaxRate        decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		Rates:          DefaultRates(),
		ServiceFeeRate: decimal.RequireFromString("0.10"),
		TaxRate:        decimal.RequireFromString("0.05"),
	}
}
