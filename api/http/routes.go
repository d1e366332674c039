// Package routes wires the read-only query facade together, mirroring
// the teacher's SetupRoutes shape: middleware stack, a single handler
// group bound to the shared DealStore, one route group per resource.
package routes

import (
	"net/http"

	"performa/api/http/handlers"
	"performa/api/http/middleware"
	"performa/api/http/store"
	"performa/internal/config"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the gin.Engine serving spec.md §6.7's three
// operations plus ledger export, backed by s.
func SetupRoutes(cfg *config.Config, s *store.DealStore) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := handlers.New(s)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.Server.QueryRateLimitPerSecond, cfg.Server.QueryRateBurst))
	{
		v1.POST("/deals", h.PostAnalyze)

		deals := v1.Group("/deals/:deal_id")
		deals.Use(middleware.ValidateDealID())
		{
			deals.GET("/metrics/:name", h.GetMetric)
			deals.GET("/query/:expr", h.GetQuery)
			deals.GET("/partners/:partner_id", h.GetPartner)
			deals.GET("/export", h.GetExport)
		}
	}

	return r
}
