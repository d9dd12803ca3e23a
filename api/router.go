package api

import (
	"github.com/gin-gonic/gin"

	"github.com/AlfredvdM/igrow-lms-sub000/config"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

// NewRouter wires middleware and routes.
func NewRouter(cfg *config.Config, h *Handler, logger *utils.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(CORS(cfg.CORSAllowedOrigins))

	r.GET("/api/health", h.Health)

	authed := r.Group("/api", AuthRequired(cfg.SupabaseJWTSecret))
	{
		authed.GET("/leads", h.ListLeads)
		authed.GET("/leads/export", h.ExportLeads)

		analytics := authed.Group("/analytics")
		analytics.GET("/overview", h.Overview)
		analytics.GET("/distributions", h.Distributions)
		analytics.GET("/timeseries", h.TimeSeries)
		analytics.GET("/funnel", h.Funnel)
		analytics.GET("/dashboard", h.Dashboard)
	}

	if cfg.SupabaseJWTSecret == "" {
		logger.Warn("[api] SUPABASE_JWT_SECRET is empty, analytics endpoints are unauthenticated")
	}
	return r
}
