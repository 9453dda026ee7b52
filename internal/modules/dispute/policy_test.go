package dispute

import (
	"errors"
	"testing"
	"time"
)

var filedAt = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func TestPolicy_SLADeadlines(t *testing.T) {
	tests := []struct {
		severity string
		want     time.Duration
	}{
		{severity: "critical", want: time.Hour},
		{severity: "high", want: 4 * time.Hour},
		{severity: "medium", want: 24 * time.Hour},
		{severity: "low", want: 48 * time.Hour},
		{severity: "catastrophic", want: 24 * time.Hour},
		{severity: "", want: 24 * time.Hour},
		{severity: "Critical", want: 24 * time.Hour},
	}
	p := NewPolicy(DefaultAutoResolveThreshold)
	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			res, err := p.Evaluate(PolicyInput{
				Severity:  tt.severity,
				Category:  "service_issue",
				CreatedAt: filedAt.Format(time.RFC3339),
			})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if want := filedAt.Add(tt.want); !res.TargetResolutionDeadline.Equal(want) {
				t.Errorf("deadline = %v, want %v", res.TargetResolutionDeadline, want)
			}
		})
	}
}

func TestPolicy_CanAutoResolve(t *testing.T) {
	tests := []struct {
		name       string
		severity   string
		category   string
		confidence float64
		want       bool
	}{
		{name: "confident low wrong route", severity: "low", category: "wrong_route", confidence: 0.95, want: true},
		{name: "confident medium service issue", severity: "medium", category: "service_issue", confidence: 0.9, want: true},
		{name: "unlisted category is allowed", severity: "low", category: "billing", confidence: 0.99, want: true},
		{name: "threshold must be exceeded", severity: "low", category: "wrong_route", confidence: 0.85, want: false},
		{name: "low confidence", severity: "low", category: "wrong_route", confidence: 0.4, want: false},
		{name: "high severity", severity: "high", category: "service_issue", confidence: 0.99, want: false},
		{name: "critical severity", severity: "critical", category: "wrong_route", confidence: 1, want: false},
		{name: "unknown severity", severity: "urgent", category: "wrong_route", confidence: 1, want: false},
	}
	p := NewPolicy(DefaultAutoResolveThreshold)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Decide(filedAt, tt.severity, tt.category, tt.confidence, 20)
			if res.CanAutoResolve != tt.want {
				t.Fatalf("CanAutoResolve = %v, want %v", res.CanAutoResolve, tt.want)
			}
			if tt.want {
				if res.CompensationPercent == nil || *res.CompensationPercent != 20 {
					t.Errorf("CompensationPercent = %v, want 20", res.CompensationPercent)
				}
			} else if res.CompensationPercent != nil {
				t.Errorf("CompensationPercent = %v, want nil", *res.CompensationPercent)
			}
		})
	}
}

func TestPolicy_SafetyConcernNeverAutoResolves(t *testing.T) {
	p := NewPolicy(0)
	for _, severity := range []string{"low", "medium", "high", "critical", "unknown"} {
		for _, confidence := range []float64{0, 0.5, 0.99, 1} {
			res := p.Decide(filedAt, severity, "safety_concern", confidence, 100)
			if res.CanAutoResolve {
				t.Errorf("safety_concern/%s/%v was auto-resolvable", severity, confidence)
			}
			if res.CompensationPercent != nil {
				t.Errorf("safety_concern/%s/%v carried compensation", severity, confidence)
			}
		}
	}
}

func TestPolicy_CreatedAtDefaultsToNow(t *testing.T) {
	p := Policy{AutoResolveThreshold: 0.5, Now: func() time.Time { return filedAt }}
	res, err := p.Evaluate(PolicyInput{Severity: "critical", Category: "wrong_route"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if want := filedAt.Add(time.Hour); !res.TargetResolutionDeadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", res.TargetResolutionDeadline, want)
	}
}

func TestPolicy_CreatedAtKeepsOffset(t *testing.T) {
	p := NewPolicy(DefaultAutoResolveThreshold)
	res, err := p.Evaluate(PolicyInput{Severity: "high", CreatedAt: "2026-05-04T12:30:00.250+03:00"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	want := time.Date(2026, 5, 4, 13, 30, 0, 250_000_000, time.UTC)
	if !res.TargetResolutionDeadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", res.TargetResolutionDeadline, want)
	}
}

func TestPolicy_InvalidCreatedAt(t *testing.T) {
	p := NewPolicy(DefaultAutoResolveThreshold)
	for _, ts := range []string{"yesterday", "2026-13-01T00:00:00Z", "2026-05-04 09:30:00"} {
		_, err := p.Evaluate(PolicyInput{Severity: "low", CreatedAt: ts})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Evaluate(%q) error = %v, want ErrInvalidInput", ts, err)
		}
	}
}

func TestSLAHours(t *testing.T) {
	if got := SLAHours("low"); got != 48 {
		t.Errorf("SLAHours(low) = %d, want 48", got)
	}
	if got := SLAHours("nope"); got != 24 {
		t.Errorf("SLAHours(nope) = %d, want 24", got)
	}
}
