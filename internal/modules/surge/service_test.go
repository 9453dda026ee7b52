package surge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"farmlink/internal/types"
)

type memCounter struct {
	counts map[string]int64
	err    error
}

func (m *memCounter) Incr(_ context.Context, kind Kind, cell string, bucket int64) error {
	if m.err != nil {
		return m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[fmt.Sprintf("%s/%s/%d", kind, cell, bucket)]++
	return nil
}

func (m *memCounter) Counts(_ context.Context, cell string, bucket int64) (Counts, error) {
	if m.err != nil {
		return Counts{}, m.err
	}
	return Counts{
		Demand: m.counts[fmt.Sprintf("%s/%s/%d", KindDemand, cell, bucket)],
		Supply: m.counts[fmt.Sprintf("%s/%s/%d", KindSupply, cell, bucket)],
	}, nil
}

func newTestService(c Counter, now time.Time) *Service {
	svc := NewService(c, DefaultConfig(), nil)
	svc.now = func() time.Time { return now }
	return svc
}

var (
	coop     = types.Location{Lat: -1.2921, Lng: 36.8219}
	coopNext = types.Location{Lat: -1.29211, Lng: 36.82191}
	farAway  = types.Location{Lat: 0.5143, Lng: 35.2698}
)

func TestService_MultiplierTracksDemandAndSupply(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&memCounter{}, time.Date(2026, 3, 1, 10, 2, 0, 0, time.UTC))

	for i := 0; i < 4; i++ {
		if err := svc.RecordDemand(ctx, coop); err != nil {
			t.Fatalf("RecordDemand() error = %v", err)
		}
	}
	if err := svc.RecordSupply(ctx, coopNext); err != nil {
		t.Fatalf("RecordSupply() error = %v", err)
	}

	got, err := svc.Multiplier(ctx, coop)
	if err != nil {
		t.Fatalf("Multiplier() error = %v", err)
	}
	// ratio 4 -> 1 + 0.25*3
	if got != 1.75 {
		t.Errorf("Multiplier() = %v, want 1.75", got)
	}

	other, err := svc.Multiplier(ctx, farAway)
	if err != nil {
		t.Fatalf("Multiplier() error = %v", err)
	}
	if other != 1 {
		t.Errorf("Multiplier() in quiet cell = %v, want 1", other)
	}
}

func TestService_NewWindowResets(t *testing.T) {
	ctx := context.Background()
	counter := &memCounter{}
	svc := newTestService(counter, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	for i := 0; i < 5; i++ {
		_ = svc.RecordDemand(ctx, coop)
	}

	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 6, 0, 0, time.UTC) }
	got, _ := svc.Multiplier(ctx, coop)
	if got != 1 {
		t.Errorf("Multiplier() after window rollover = %v, want 1", got)
	}
}

func TestService_SubSecondWindow(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Window = 500 * time.Millisecond
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(&memCounter{}, cfg, nil)
	svc.now = func() time.Time { return start }

	for i := 0; i < 3; i++ {
		if err := svc.RecordDemand(ctx, coop); err != nil {
			t.Fatalf("RecordDemand() error = %v", err)
		}
	}
	if got, err := svc.Multiplier(ctx, coop); err != nil || got <= 1 {
		t.Fatalf("Multiplier() = %v, %v; want surge inside the window", got, err)
	}

	svc.now = func() time.Time { return start.Add(600 * time.Millisecond) }
	if got, _ := svc.Multiplier(ctx, coop); got != 1 {
		t.Errorf("Multiplier() in next half-second window = %v, want 1", got)
	}
}

func TestService_CounterFailureDegradesToNoSurge(t *testing.T) {
	svc := newTestService(&memCounter{err: errors.New("redis down")}, time.Now())
	got, err := svc.Multiplier(context.Background(), coop)
	if err != nil || got != 1 {
		t.Fatalf("Multiplier() = %v, %v; want 1, nil", got, err)
	}
}

func TestService_RejectsInvalidLocation(t *testing.T) {
	svc := newTestService(&memCounter{}, time.Now())
	if err := svc.RecordSupply(context.Background(), types.Location{Lat: 95}); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("RecordSupply() error = %v, want ErrInvalidInput", err)
	}
}
