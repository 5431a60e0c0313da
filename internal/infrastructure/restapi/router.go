package restapi

import (
	"net/http"
	"time"

	"balance_aggregator/internal/app/port"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine serving the API, health and metrics.
func SetupRouter(balanceHandler *BalanceHandler, metricsHandler http.Handler, logger port.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metricsHandler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/accounts", balanceHandler.ListAccounts)
		v1.GET("/accounts/:address/totals", balanceHandler.GetAccountTotals)
		v1.GET("/accounts/:address/assets", balanceHandler.GetAccountAssets)
		v1.POST("/balances/aggregate", balanceHandler.Aggregate)
	}

	return router
}

func requestLogger(logger port.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"client_ip", c.ClientIP())
	}
}
