// Package api exposes the wallet store to a local UI over HTTP.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/wallet-store/internal/constants"
)

func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLog())

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", constants.RequestIDHeader},
			MaxAge:       10 * time.Minute,
		}))
	}

	r.GET("/healthz", h.Health)

	wallet := r.Group("/wallet")
	{
		wallet.GET("/status", h.Status)
		wallet.POST("/initialize", h.Initialize)
		wallet.POST("/accounts/refresh", h.RefreshAccounts)
		wallet.POST("/chainId/refresh", h.RefreshChainID)
		wallet.POST("/reset", h.Reset)
		wallet.GET("/balance", h.Balance)
		wallet.PUT("/defaultNetwork", h.SetDefaultNetwork)
	}

	u := r.Group("/units")
	{
		u.GET("/toWei", h.ToWei)
		u.GET("/toEther", h.ToEther)
	}

	r.GET("/networks/:chainId", h.NetworkName)

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(constants.RequestIDHeader, id)
		c.Next()
	}
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}
