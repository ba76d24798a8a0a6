package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spendbot/internal/handler"
	"spendbot/internal/middleware"
	"spendbot/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	tokens service.TokenService,
	healthH *handler.HealthHandler,
	documentH *handler.DocumentHandler,
	exportH *handler.ExportHandler,
	log *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Service-to-service routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.ServiceAuth(tokens))
	v1.POST("/documents", documentH.Create)
	v1.GET("/users/:id/expenses/export", exportH.Export)

	return r
}
