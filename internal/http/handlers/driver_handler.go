// README: Driver location pings; each ping feeds the surge supply counter.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmlink/internal/http/middleware"
	"farmlink/internal/types"
)

// SupplyRecorder is satisfied by *surge.Service.
type SupplyRecorder interface {
	RecordSupply(ctx context.Context, pos types.Location) error
}

type DriverHandler struct {
	supply SupplyRecorder
}

func NewDriverHandler(supply SupplyRecorder) *DriverHandler {
	return &DriverHandler{supply: supply}
}

// UpdateLocation handles PUT /api/drivers/:id/location.
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}
	// Only the authenticated driver may report their own position.
	if middleware.CallerUID(c) != id {
		writeError(c, http.StatusForbidden, "forbidden: id does not match authenticated user")
		return
	}

	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json: lat and lng are required")
		return
	}
	if err := h.supply.RecordSupply(c.Request.Context(), req.location()); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}
