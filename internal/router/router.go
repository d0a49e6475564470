package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cartpay/internal/handler"
	"cartpay/internal/middleware"
	"cartpay/internal/payment"
	"cartpay/internal/repository"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	registry *payment.Registry,
	logger *zap.Logger,
	apiKey string,
	webhookDeduper middleware.WebhookDeduper,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Repositories
	repos := &handler.Repos{
		Session: repository.NewSessionRepository(db),
		Webhook: repository.NewWebhookEventRepository(db),
	}

	// Handlers
	paymentHandler := handler.NewPaymentHandler(repos, registry, logger)
	webhookHandler := handler.NewWebhookHandler(repos, registry, logger)

	// Lifecycle API — called by the commerce platform, key protected.
	apiGroup := e.Group("/api/payments")
	apiGroup.Use(middleware.APIAuth(apiKey))

	apiGroup.POST("/sessions", paymentHandler.CreateSession)
	apiGroup.GET("/sessions/:order_id", paymentHandler.GetSession)
	apiGroup.GET("/sessions/:order_id/status", paymentHandler.GetStatus)
	apiGroup.POST("/sessions/:order_id/authorize", paymentHandler.Authorize)
	apiGroup.POST("/sessions/:order_id/capture", paymentHandler.Capture)
	apiGroup.POST("/sessions/:order_id/cancel", paymentHandler.Cancel)
	apiGroup.POST("/sessions/:order_id/refund", paymentHandler.Refund)
	apiGroup.POST("/sessions/:order_id/update", paymentHandler.Update)
	apiGroup.DELETE("/sessions/:order_id", paymentHandler.Delete)

	// Gateway webhooks — signature verified in the provider, deduplicated
	// here so redeliveries can't double-apply a transition.
	webhookGroup := e.Group("/webhooks")
	webhookGroup.Use(middleware.WebhookDedup(webhookDeduper))
	webhookGroup.POST("/:provider", webhookHandler.Handle)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
