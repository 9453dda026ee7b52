package dispute

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmlink/internal/testutil"
	"farmlink/internal/types"
)

func TestPGStore_Lifecycle(t *testing.T) {
	db := testutil.Postgres(t, "refund_requests", "dispute_audit_logs", "disputes")
	store := NewStore(db)
	ctx := context.Background()

	created := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	pct := 15.0
	d := &Dispute{
		ID: "d-1", UserID: "farmer-1", RideID: "ride-1", Description: "detour through the orchard",
		EvidenceURLs: []string{"https://cdn.example/photo.jpg"},
		Category:     "wrong_route", Severity: "low", Confidence: 0.93,
		Status: StatusAutoResolved, TargetResolutionAt: created.Add(48 * time.Hour),
		CanAutoResolve: true, CompensationPercent: &pct,
		CreatedAt: created, UpdatedAt: created, ResolvedAt: &created,
	}
	filed := &AuditEntry{ActorID: "farmer-1", Action: "dispute_filed", TargetType: "disputes", TargetIDs: []types.ID{"d-1"}, CreatedAt: created}
	refund := &RefundRequest{DisputeID: "d-1", RideID: "ride-1", UserID: "farmer-1", CompensationPercent: 15, CreatedAt: created}
	if err := store.CreateFiled(ctx, d, filed, refund); err != nil {
		t.Fatalf("CreateFiled: %v", err)
	}

	got, err := store.Get(ctx, "d-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusAutoResolved || got.CompensationPercent == nil || *got.CompensationPercent != 15 {
		t.Fatalf("Get returned %+v", got)
	}
	if len(got.EvidenceURLs) != 1 {
		t.Fatalf("EvidenceURLs = %v", got.EvidenceURLs)
	}
	var refunds int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM refund_requests WHERE dispute_id = 'd-1'`).Scan(&refunds); err != nil || refunds != 1 {
		t.Fatalf("refund rows = %d, %v; want 1", refunds, err)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	// refund pointing at an unknown dispute violates the foreign key and rolls the filing back
	orphan := *d
	orphan.ID = "d-2"
	badRefund := &RefundRequest{DisputeID: "nope", RideID: "ride-1", UserID: "farmer-1", CompensationPercent: 15, CreatedAt: created}
	if err := store.CreateFiled(ctx, &orphan, filed, badRefund); err == nil {
		t.Fatal("CreateFiled with dangling refund succeeded")
	}
	if _, err := store.Get(ctx, "d-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(d-2) error = %v, want rolled back", err)
	}

	at := created.Add(time.Hour)
	updated, err := store.UpdateStatus(ctx, []types.ID{"d-1", "missing"}, StatusResolved, "admin-1", at)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(updated) != 1 || updated[0] != "d-1" {
		t.Fatalf("updated = %v", updated)
	}
	if got, _ := store.Get(ctx, "d-1"); got.ResolvedAt == nil || !got.ResolvedAt.Equal(created) {
		t.Fatalf("ResolvedAt = %v, want original %v kept", got.ResolvedAt, created)
	}
	if _, err := store.UpdateStatus(ctx, []types.ID{"d-1"}, StatusInReview, "admin-1", at); err != nil {
		t.Fatalf("UpdateStatus(in_review): %v", err)
	}
	if got, _ := store.Get(ctx, "d-1"); got.ResolvedAt != nil {
		t.Fatalf("reopened dispute ResolvedAt = %v, want nil", got.ResolvedAt)
	}

	if err := store.AppendAudit(ctx, &AuditEntry{
		ActorID: "admin-1", Action: "bulk_update", TargetType: "disputes",
		TargetIDs: updated, Changes: map[string]any{"status": "resolved"}, CreatedAt: at,
	}); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}

	mine, err := store.ListByUser(ctx, "farmer-1")
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListByUser = %v, %v", mine, err)
	}
	if mine[0].UpdatedBy == nil || *mine[0].UpdatedBy != "admin-1" {
		t.Fatalf("UpdatedBy = %v", mine[0].UpdatedBy)
	}

	from := created.Add(time.Minute)
	between, err := store.ListBetween(ctx, &from, nil)
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	if len(between) != 0 {
		t.Fatalf("ListBetween after creation = %d disputes, want 0", len(between))
	}
}
