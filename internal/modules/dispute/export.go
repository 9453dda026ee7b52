package dispute

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var exportHeader = []string{
	"id", "user_id", "ride_id", "category", "severity", "status",
	"can_auto_resolve", "compensation_percent", "created_at", "target_resolution_at", "resolved_at",
}

// ExportCSV writes the disputes created in [from, to] as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, from, to *time.Time) error {
	disputes, err := s.store.ListBetween(ctx, from, to)
	if err != nil {
		return err
	}
	return writeCSV(w, disputes)
}

func writeCSV(w io.Writer, disputes []Dispute) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, d := range disputes {
		compensation := ""
		if d.CompensationPercent != nil {
			compensation = strconv.FormatFloat(*d.CompensationPercent, 'f', -1, 64)
		}
		resolved := ""
		if d.ResolvedAt != nil {
			resolved = d.ResolvedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			string(d.ID), string(d.UserID), string(d.RideID), d.Category, d.Severity, string(d.Status),
			strconv.FormatBool(d.CanAutoResolve), compensation,
			d.CreatedAt.UTC().Format(time.RFC3339), d.TargetResolutionAt.UTC().Format(time.RFC3339), resolved,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
