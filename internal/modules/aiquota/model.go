package aiquota

import "errors"

// ErrQuotaExceeded is returned when a user has no classifier calls left for the current month.
var ErrQuotaExceeded = errors.New("classifier quota exceeded")

// DefaultAllowance is the number of classifier calls granted per month.
const DefaultAllowance = 20

const monthLayout = "2006-01"
