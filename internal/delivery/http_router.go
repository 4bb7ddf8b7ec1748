package delivery

import (
	"time"

	"github.com/JosineyAlves/adcloner-sub000/internal/delivery/middleware"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"
	"github.com/JosineyAlves/adcloner-sub000/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HTTPRouter struct {
	handlers *HTTPHandlers
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	// Clone batches issue many sequential remote calls under backoff, so the
	// request timeout is far above an interactive default.
	router.Use(middleware.Timeout(5 * time.Minute))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/", r.handlers.GetAPIInfo)
		v1.GET("", r.handlers.GetAPIInfo)

		// Clone endpoints
		clone := v1.Group("/clone")
		{
			clone.POST("/run", r.handlers.CloneRun)
		}

		// Template endpoints
		templates := v1.Group("/templates")
		{
			templates.GET("", r.handlers.ListTemplates)
			templates.GET("/:id", r.handlers.GetTemplate)
			templates.POST("/import", r.handlers.ImportTemplate)
			templates.POST("/:id/clone", r.handlers.CloneTemplate)
		}
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	return router
}
