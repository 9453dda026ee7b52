// README: Dispute handlers: policy evaluation, filing, lookup and admin tooling.
package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"farmlink/internal/http/middleware"
	"farmlink/internal/modules/dispute"
	"farmlink/internal/types"
)

const classifyTimeout = 15 * time.Second

// QuotaReporter is satisfied by *aiquota.Service.
type QuotaReporter interface {
	Remaining(ctx context.Context, uid string) (int, error)
}

type DisputeHandler struct {
	disputes *dispute.Service
	quota    QuotaReporter
}

func NewDisputeHandler(svc *dispute.Service, quota QuotaReporter) *DisputeHandler {
	return &DisputeHandler{disputes: svc, quota: quota}
}

type policyReq struct {
	Severity             string   `json:"severity"`
	Category             string   `json:"category"`
	CreatedAtISO8601     string   `json:"createdAtISO8601"`
	CreatedAt            string   `json:"createdAt"`
	ClassifierConfidence *float64 `json:"classifierConfidence" binding:"required"`
	CompensationPercent  float64  `json:"compensationPercent"`
}

type policyResp struct {
	TargetResolutionDeadline string   `json:"targetResolutionDeadlineISO8601"`
	CanAutoResolve           bool     `json:"canAutoResolve"`
	CompensationPercent      *float64 `json:"compensationPercent"`
}

// Policy handles POST /api/disputes/policy.
func (h *DisputeHandler) Policy(c *gin.Context) {
	var req policyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json: classifierConfidence is required")
		return
	}
	createdAt := req.CreatedAtISO8601
	if createdAt == "" {
		createdAt = req.CreatedAt
	}
	res, err := h.disputes.Policy().Evaluate(dispute.PolicyInput{
		Severity:             req.Severity,
		Category:             req.Category,
		CreatedAt:            createdAt,
		ClassifierConfidence: *req.ClassifierConfidence,
		CompensationPercent:  req.CompensationPercent,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, policyResp{
		TargetResolutionDeadline: res.TargetResolutionDeadline.Format(time.RFC3339Nano),
		CanAutoResolve:           res.CanAutoResolve,
		CompensationPercent:      res.CompensationPercent,
	})
}

type fileDisputeReq struct {
	RideID      string   `json:"rideId" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Evidence    []string `json:"evidence" binding:"omitempty,max=10,dive,url"`
}

type disputeResp struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	RideID              string     `json:"rideId"`
	Description         string     `json:"description"`
	Evidence            []string   `json:"evidence"`
	Category            string     `json:"category"`
	Severity            string     `json:"severity"`
	Status              string     `json:"status"`
	TargetResolutionAt  time.Time  `json:"targetResolutionDeadline"`
	CanAutoResolve      bool       `json:"canAutoResolve"`
	CompensationPercent *float64   `json:"compensationPercent"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	ResolvedAt          *time.Time `json:"resolvedAt,omitempty"`
}

type analysisResp struct {
	Category            string  `json:"category"`
	Severity            string  `json:"severity"`
	Confidence          float64 `json:"confidence"`
	CompensationPercent float64 `json:"compensationPercent"`
	RecommendedAction   string  `json:"recommendedAction"`
}

// File handles POST /api/disputes.
func (h *DisputeHandler) File(c *gin.Context) {
	var req fileDisputeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json: rideId and description are required")
		return
	}
	if !isValidID(req.RideID) {
		writeError(c, http.StatusBadRequest, "invalid rideId")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), classifyTimeout)
	defer cancel()

	res, err := h.disputes.File(ctx, dispute.FileCommand{
		UserID:       types.ID(middleware.CallerUID(c)),
		RideID:       types.ID(req.RideID),
		Description:  req.Description,
		EvidenceURLs: req.Evidence,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{
		"dispute": toDisputeResp(res.Dispute),
		"analysis": analysisResp{
			Category:            res.Classification.Category,
			Severity:            res.Classification.Severity,
			Confidence:          res.Classification.Confidence,
			CompensationPercent: res.Classification.CompensationPercent,
			RecommendedAction:   res.Classification.RecommendedAction,
		},
	})
}

// Get handles GET /api/disputes/:id for the filer or an admin.
func (h *DisputeHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}
	d, err := h.disputes.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if string(d.UserID) != middleware.CallerUID(c) && middleware.CallerRole(c) != roleAdmin {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(c, http.StatusOK, toDisputeResp(d))
}

// List handles GET /api/disputes.
func (h *DisputeHandler) List(c *gin.Context) {
	list, err := h.disputes.ListByUser(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]disputeResp, 0, len(list))
	for i := range list {
		out = append(out, toDisputeResp(&list[i]))
	}
	writeJSON(c, http.StatusOK, map[string]any{"disputes": out})
}

// Quota handles GET /api/disputes/quota.
func (h *DisputeHandler) Quota(c *gin.Context) {
	n, err := h.quota.Remaining(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"remaining": n})
}

type bulkUpdateReq struct {
	DisputeIDs []string `json:"disputeIds" binding:"required,min=1,max=500"`
	Status     string   `json:"status" binding:"required"`
}

// BulkUpdate handles POST /api/admin/disputes/bulk.
func (h *DisputeHandler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json: disputeIds and status are required")
		return
	}
	ids := make([]types.ID, 0, len(req.DisputeIDs))
	for _, id := range req.DisputeIDs {
		if !isValidID(id) {
			writeError(c, http.StatusBadRequest, "invalid dispute id")
			return
		}
		ids = append(ids, types.ID(id))
	}

	updated, err := h.disputes.BulkUpdateStatus(c.Request.Context(), dispute.BulkUpdateCommand{
		AdminID: types.ID(middleware.CallerUID(c)),
		IDs:     ids,
		Status:  dispute.Status(req.Status),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if updated == nil {
		updated = []types.ID{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"updated": updated, "count": len(updated)})
}

// Analytics handles GET /api/admin/disputes/analytics?startDate&endDate.
func (h *DisputeHandler) Analytics(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	a, err := h.disputes.Analytics(c.Request.Context(), from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"total":                a.Total,
		"statusDistribution":   a.StatusDistribution,
		"categoryDistribution": a.CategoryDistribution,
		"severityDistribution": a.SeverityDistribution,
		"avgResolutionMinutes": a.AvgResolutionMinutes,
		"categoryTrends":       a.CategoryTrends,
		"slaBreaches":          a.SLABreaches,
	})
}

// Export handles GET /api/admin/disputes/export?startDate&endDate.
func (h *DisputeHandler) Export(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.disputes.ExportCSV(c.Request.Context(), &buf, from, to); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="disputes.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// parseRange reads startDate/endDate as RFC 3339 or YYYY-MM-DD; a bare endDate covers the whole day.
func parseRange(c *gin.Context) (from, to *time.Time, ok bool) {
	parse := func(name string, endOfDay bool) (*time.Time, bool) {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil, true
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t, true
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid "+name)
			return nil, false
		}
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, true
	}
	if from, ok = parse("startDate", false); !ok {
		return nil, nil, false
	}
	if to, ok = parse("endDate", true); !ok {
		return nil, nil, false
	}
	if from != nil && to != nil && to.Before(*from) {
		writeError(c, http.StatusBadRequest, "endDate before startDate")
		return nil, nil, false
	}
	return from, to, true
}

func toDisputeResp(d *dispute.Dispute) disputeResp {
	evidence := d.EvidenceURLs
	if evidence == nil {
		evidence = []string{}
	}
	return disputeResp{
		ID:                  string(d.ID),
		UserID:              string(d.UserID),
		RideID:              string(d.RideID),
		Description:         d.Description,
		Evidence:            evidence,
		Category:            d.Category,
		Severity:            d.Severity,
		Status:              string(d.Status),
		TargetResolutionAt:  d.TargetResolutionAt,
		CanAutoResolve:      d.CanAutoResolve,
		CompensationPercent: d.CompensationPercent,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		ResolvedAt:          d.ResolvedAt,
	}
}
