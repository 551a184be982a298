package api

import (
	"log"

	"github.com/Conceptual-Machines/beatstoch-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/beatstoch-api/internal/api/middleware"
	"github.com/Conceptual-Machines/beatstoch-api/internal/config"
	"github.com/Conceptual-Machines/beatstoch-api/internal/metrics"
	"github.com/Conceptual-Machines/beatstoch-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the services the router wires into handlers
type Dependencies struct {
	DB       *gorm.DB // nil when persistence is disabled
	Patterns *services.PatternService
	Metrics  metrics.Recorder
	// Counters backs the totals on /api/metrics; it should also be one of the recorders
	Counters *metrics.Counters
	// TempoLookup reports whether song lookups can reach a resolver
	TempoLookup bool
}

func SetupRouter(cfg *config.Config, deps Dependencies, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Metrics))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.DB)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, deps.DB != nil, deps.TempoLookup, deps.Counters)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	{
		patternHandler := handlers.NewPatternHandler(deps.Patterns)
		v1.POST("/patterns", patternHandler.Generate)
		v1.POST("/patterns/from-song", patternHandler.FromSong)
		v1.POST("/patterns/midi", patternHandler.GenerateMIDI)
		v1.GET("/patterns/:id", patternHandler.Get)
		v1.GET("/patterns/:id/midi", patternHandler.GetMIDI)

		v1.GET("/styles", handlers.ListStyles)
	}

	return router
}

func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch {
	case cfg.IsGatewayMode():
		log.Println("🔐 Auth mode: gateway (trusting X-User-* headers)")
		return apimiddleware.GatewayAuth()
	case cfg.IsJWTMode():
		log.Println("🔐 Auth mode: jwt")
		return apimiddleware.JWTAuth(cfg.JWTSecret)
	default:
		log.Println("🔓 Auth mode: none")
		return apimiddleware.NoAuth()
	}
}
