package dispute

import "time"

// Summarize aggregates disputes for the admin dashboard.
// An SLA breach is a dispute resolved after its deadline, or still open past it at now.
func Summarize(disputes []Dispute, now time.Time) Analytics {
	a := Analytics{
		Total:                len(disputes),
		StatusDistribution:   map[Status]int{},
		CategoryDistribution: map[string]int{},
		SeverityDistribution: map[string]int{},
		AvgResolutionMinutes: map[string]float64{},
		CategoryTrends:       map[string]map[string]int{},
	}
	resolvedCount := map[string]int{}
	resolvedTotal := map[string]float64{}

	for _, d := range disputes {
		a.StatusDistribution[d.Status]++
		a.CategoryDistribution[d.Category]++
		a.SeverityDistribution[d.Severity]++

		day := d.CreatedAt.UTC().Format("2006-01-02")
		if a.CategoryTrends[day] == nil {
			a.CategoryTrends[day] = map[string]int{}
		}
		a.CategoryTrends[day][d.Category]++

		if d.ResolvedAt != nil {
			resolvedCount[d.Severity]++
			resolvedTotal[d.Severity] += d.ResolvedAt.Sub(d.CreatedAt).Minutes()
			if d.ResolvedAt.After(d.TargetResolutionAt) {
				a.SLABreaches++
			}
		} else if now.After(d.TargetResolutionAt) {
			a.SLABreaches++
		}
	}
	for sev, n := range resolvedCount {
		a.AvgResolutionMinutes[sev] = resolvedTotal[sev] / float64(n)
	}
	return a
}
