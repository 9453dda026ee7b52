package ai

// Classification captures the structured output from the AI model.
type Classification struct {
	// Category is one of wrong_route, service_issue, safety_concern, or another label the model chose.
	Category string `json:"category"`

	// Severity is low, medium, high or critical.
	Severity string `json:"severity"`

	// Confidence is the model's self-reported certainty in [0, 1].
	Confidence float64 `json:"confidence"`

	// CompensationPercent is the suggested refund as a percentage of the fare.
	CompensationPercent float64 `json:"compensation_percent"`

	RecommendedAction string `json:"recommended_action"`
}
