package router

import (
	"github.com/gin-gonic/gin"

	"pocketpilot/internal/handler"
	"pocketpilot/internal/middleware"
	"pocketpilot/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	tokenSvc service.TokenService,
	allowedOrigins []string,
	receiptH *handler.ReceiptHandler,
	txnH *handler.TransactionHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Protected routes - require valid JWT
	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(tokenSvc))

	receipts := protected.Group("/receipts")
	receipts.POST("/extract", receiptH.Extract)
	receipts.POST("", receiptH.Upload)
	receipts.GET("", receiptH.List)
	receipts.GET("/:id", receiptH.GetByID)
	receipts.GET("/:id/file", receiptH.FileURL)

	txns := protected.Group("/transactions")
	txns.POST("", txnH.Create)
	txns.GET("", txnH.List)
	txns.GET("/export", txnH.Export)
	txns.GET("/:id", txnH.GetByID)
	txns.DELETE("/:id", txnH.Delete)

	protected.GET("/stats/summary", statsH.Summary)

	return r
}
