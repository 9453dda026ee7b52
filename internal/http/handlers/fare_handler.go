// README: Fare estimate and quote lookup handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"farmlink/internal/http/middleware"
	"farmlink/internal/modules/pricing"
	"farmlink/internal/types"
)

type FareHandler struct {
	pricing *pricing.Service
}

func NewFareHandler(svc *pricing.Service) *FareHandler {
	return &FareHandler{pricing: svc}
}

type locationReq struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (l *locationReq) location() types.Location {
	return types.Location{Lat: *l.Lat, Lng: *l.Lng}
}

type fareEstimateReq struct {
	Pickup      *locationReq `json:"pickup" binding:"required"`
	Destination *locationReq `json:"destination" binding:"required"`
	RideClass   string       `json:"rideClass"`
}

type lineItemResp struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type fareResp struct {
	QuoteID                  string         `json:"quoteId"`
	RideClass                string         `json:"rideClass"`
	Currency                 string         `json:"currency"`
	BaseFare                 float64        `json:"baseFare"`
	DistanceFare             float64        `json:"distanceFare"`
	TimeFare                 float64        `json:"timeFare"`
	SurgeFare                float64        `json:"surgeFare"`
	ServiceFee               float64        `json:"serviceFee"`
	Taxes                    float64        `json:"taxes"`
	TotalEstimate            float64        `json:"totalEstimate"`
	SurgeMultiplier          float64        `json:"surgeMultiplier"`
	EstimatedDistanceKm      float64        `json:"estimatedDistanceKm"`
	EstimatedDurationMinutes float64        `json:"estimatedDurationMinutes"`
	Breakdown                []lineItemResp `json:"breakdown"`
	CreatedAt                time.Time      `json:"createdAt"`
}

// Estimate handles POST /api/rides/fare/estimate.
func (h *FareHandler) Estimate(c *gin.Context) {
	var req fareEstimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json: pickup and destination lat/lng are required")
		return
	}

	q, err := h.pricing.Quote(c.Request.Context(), types.ID(middleware.CallerUID(c)), pricing.EstimateRequest{
		Pickup:      req.Pickup.location(),
		Destination: req.Destination.location(),
		RideClass:   req.RideClass,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toFareResp(q))
}

// GetQuote handles GET /api/rides/fare/quotes/:id. Only the requester or an admin may read it.
func (h *FareHandler) GetQuote(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}
	q, err := h.pricing.GetQuote(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if string(q.UserID) != middleware.CallerUID(c) && middleware.CallerRole(c) != roleAdmin {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(c, http.StatusOK, toFareResp(q))
}

func toFareResp(q *pricing.Quote) fareResp {
	display := func(d decimal.Decimal) float64 {
		return types.Money{Amount: d, Currency: q.Currency}.Display()
	}
	f := q.Fare
	resp := fareResp{
		QuoteID:                  string(q.ID),
		RideClass:                string(f.RideClass),
		Currency:                 q.Currency,
		BaseFare:                 display(f.BaseFare),
		DistanceFare:             display(f.DistanceFare),
		TimeFare:                 display(f.TimeFare),
		SurgeFare:                display(f.SurgeFare),
		ServiceFee:               display(f.ServiceFee),
		Taxes:                    display(f.Taxes),
		TotalEstimate:            display(f.TotalEstimate),
		SurgeMultiplier:          f.SurgeMultiplier,
		EstimatedDistanceKm:      round2(f.EstimatedDistanceKm),
		EstimatedDurationMinutes: round2(f.EstimatedDurationMinutes),
		Breakdown:                make([]lineItemResp, 0, len(f.Breakdown)),
		CreatedAt:                q.CreatedAt,
	}
	for _, it := range f.Breakdown {
		resp.Breakdown = append(resp.Breakdown, lineItemResp{Description: it.Description, Amount: display(it.Amount)})
	}
	return resp
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
