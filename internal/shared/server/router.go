package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vela-dashboard-backend/internal/analysis"
	"vela-dashboard-backend/internal/configopt"
	"vela-dashboard-backend/internal/pipelines"
	"vela-dashboard-backend/internal/shared/config"
	"vela-dashboard-backend/internal/shared/metrics"
	"vela-dashboard-backend/internal/shared/server/middleware"
	"vela-dashboard-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	AnalysisHandler  *analysis.Handler
	PipelinesHandler *pipelines.Handler
	ConfigHandler    *configopt.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"ANALYZE": {Rate: 0.5, Burst: 5},
			},
			GroupFor: analyzeGroup,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.PipelinesHandler != nil {
		deps.PipelinesHandler.RegisterRoutes(api)
	}
	if deps.ConfigHandler != nil {
		deps.ConfigHandler.RegisterRoutes(api)
	}

	return r
}

// analyzeGroup rate-limits the routes that can spend a model call.
func analyzeGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	if strings.Contains(path, "/analyses/") || strings.Contains(path, "/analyze") || strings.HasSuffix(path, "/config/analyze") {
		return "ANALYZE"
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
