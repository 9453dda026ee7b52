package dispute

import (
	"fmt"
	"time"
)

const DefaultAutoResolveThreshold = 0.85

var slaHours = map[Severity]int{
	SeverityCritical: 1,
	SeverityHigh:     4,
	SeverityMedium:   24,
	SeverityLow:      48,
}

// SLAHours returns the resolution window for a severity; unknown severities get the medium window.
func SLAHours(severity string) int {
	if h, ok := slaHours[Severity(severity)]; ok {
		return h
	}
	return slaHours[SeverityMedium]
}

// Policy is stateless apart from its configuration and safe for concurrent use.
type Policy struct {
	AutoResolveThreshold float64
	Now                  func() time.Time
}

func NewPolicy(threshold float64) Policy {
	return Policy{AutoResolveThreshold: threshold, Now: time.Now}
}

func (p Policy) Evaluate(in PolicyInput) (Resolution, error) {
	var createdAt time.Time
	if in.CreatedAt == "" {
		now := time.Now
		if p.Now != nil {
			now = p.Now
		}
		createdAt = now()
	} else {
		t, err := time.Parse(time.RFC3339Nano, in.CreatedAt)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: createdAt %q is not an RFC 3339 timestamp", ErrInvalidInput, in.CreatedAt)
		}
		createdAt = t
	}
	return p.Decide(createdAt, in.Severity, in.Category, in.ClassifierConfidence, in.CompensationPercent), nil
}

// Decide applies the policy to an already-resolved creation time.
func (p Policy) Decide(createdAt time.Time, severity, category string, confidence, compensationPercent float64) Resolution {
	res := Resolution{
		TargetResolutionDeadline: createdAt.Add(time.Duration(SLAHours(severity)) * time.Hour),
		CanAutoResolve:           p.canAutoResolve(severity, category, confidence),
	}
	if res.CanAutoResolve {
		pct := compensationPercent
		res.CompensationPercent = &pct
	}
	return res
}

// Safety disputes always go to a human, whatever the confidence.
func (p Policy) canAutoResolve(severity, category string, confidence float64) bool {
	if Category(category) == CategorySafetyConcern {
		return false
	}
	switch Severity(severity) {
	case SeverityLow, SeverityMedium:
	default:
		return false
	}
	return confidence > p.AutoResolveThreshold
}
