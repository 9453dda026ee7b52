// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlink/internal/http/handlers"
	"farmlink/internal/http/middleware"
	"farmlink/internal/infra"
	"farmlink/internal/modules/dispute"
	"farmlink/internal/modules/pricing"
)

type RouterDeps struct {
	Pricing  *pricing.Service
	Disputes *dispute.Service
	Quota    handlers.QuotaReporter
	// Supply is nil when surge tracking is disabled; the driver location route is then not served.
	Supply   handlers.SupplyRecorder
	Verifier infra.TokenVerifier
	Log      *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	fareHandler := handlers.NewFareHandler(deps.Pricing)
	api.POST("/rides/fare/estimate", fareHandler.Estimate)
	api.GET("/rides/fare/quotes/:id", fareHandler.GetQuote)

	disputeHandler := handlers.NewDisputeHandler(deps.Disputes, deps.Quota)
	api.POST("/disputes/policy", disputeHandler.Policy)
	api.POST("/disputes", disputeHandler.File)
	api.GET("/disputes", disputeHandler.List)
	if deps.Quota != nil {
		api.GET("/disputes/quota", disputeHandler.Quota)
	}
	api.GET("/disputes/:id", disputeHandler.Get)

	admin := api.Group("/admin", middleware.RequireRole("admin"))
	admin.POST("/disputes/bulk", disputeHandler.BulkUpdate)
	admin.GET("/disputes/analytics", disputeHandler.Analytics)
	admin.GET("/disputes/export", disputeHandler.Export)

	if deps.Supply != nil {
		driverHandler := handlers.NewDriverHandler(deps.Supply)
		api.PUT("/drivers/:id/location", middleware.RequireRole("driver"), driverHandler.UpdateLocation)
	}

	return r
}
