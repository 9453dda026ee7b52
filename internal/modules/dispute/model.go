// README: Dispute aggregate, classification labels and resolution policy result.
package dispute

import (
	"errors"
	"time"

	"farmlink/internal/types"
)

var (
	ErrInvalidInput = types.ErrInvalidInput
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("dispute not found")
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category is an open set; these are the labels the policy knows about.
type Category string

const (
	CategoryWrongRoute    Category = "wrong_route"
	CategoryServiceIssue  Category = "service_issue"
	CategorySafetyConcern Category = "safety_concern"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusInReview     Status = "in_review"
	StatusAutoResolved Status = "auto_resolved"
	StatusResolved     Status = "resolved"
	StatusRejected     Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusAutoResolved, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// PolicyInput mirrors the external call contract; CreatedAt is RFC 3339 or empty for "now".
type PolicyInput struct {
	Severity             string
	Category             string
	CreatedAt            string
	ClassifierConfidence float64
	CompensationPercent  float64
}

// Resolution is computed once when a dispute is filed. The deadline is never recomputed.
type Resolution struct {
	TargetResolutionDeadline time.Time
	CanAutoResolve           bool
	// CompensationPercent is nil unless CanAutoResolve.
	CompensationPercent *float64
}

type Dispute struct {
	ID                  types.ID
	UserID              types.ID
	RideID              types.ID
	Description         string
	EvidenceURLs        []string
	Category            string
	Severity            string
	Confidence          float64
	RecommendedAction   string
	Status              Status
	TargetResolutionAt  time.Time
	CanAutoResolve      bool
	CompensationPercent *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
	UpdatedBy           *types.ID
	ResolvedAt          *time.Time
}

type AuditEntry struct {
	ActorID    types.ID
	Action     string
	TargetType string
	TargetIDs  []types.ID
	Changes    map[string]any
	CreatedAt  time.Time
}

// RefundRequest is handed to the payments service for auto-resolved disputes.
type RefundRequest struct {
	DisputeID           types.ID
	RideID              types.ID
	UserID              types.ID
	CompensationPercent float64
	CreatedAt           time.Time
}

// Notice tells the filer that their dispute changed state.
type Notice struct {
	UserID              types.ID
	DisputeID           types.ID
	Status              Status
	CompensationPercent *float64
}

type Analytics struct {
	Total                int
	StatusDistribution   map[Status]int
	CategoryDistribution map[string]int
	SeverityDistribution map[string]int
	AvgResolutionMinutes map[string]float64
	CategoryTrends       map[string]map[string]int
	SLABreaches          int
}
