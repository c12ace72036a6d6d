// Package api wires the HTTP surface of the ledger service: routing, middleware
// and server lifecycle.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/securepay/ledger/internal/api/handler"
	"github.com/securepay/ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	transferHandler *handler.TransferHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	accounts := r.Group("/api/account")
	{
		accounts.GET("", accountHandler.GetAll)
		accounts.POST("", accountHandler.Create)
		accounts.GET("/:id", accountHandler.GetByID)
		accounts.PUT("/:id", accountHandler.Update)
		accounts.DELETE("/:id", accountHandler.Delete)
		accounts.GET("/by-number/:accountNumber", accountHandler.GetByNumber)

		accounts.GET("/:id/transactions", transferHandler.GetByAccountID)
		accounts.GET("/:id/history", accountHandler.GetHistory)

		accounts.POST("/transfer", transferHandler.Transfer)
		accounts.GET("/transfer/:referenceNo", transferHandler.GetByReferenceNo)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
