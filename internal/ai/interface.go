package ai

import (
	"context"
)

// DisputeClassifier turns a free-text ride dispute into a structured classification.
// Implementations may call external models; callers own retries and timeouts.
type DisputeClassifier interface {
	ClassifyDispute(ctx context.Context, description string) (*Classification, error)
}
