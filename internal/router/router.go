package router

import (
	"fmt"
	"strings"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/cache"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/config"
	adminhandlers "github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/handlers/admin"
	publichandlers "github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/handlers/public"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/response"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with all routes registered
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.Z()
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pg"
	}
	reserveRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:reserve", redisPrefix),
		WindowSeconds: cfg.Security.ReserveRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ReserveRateLimit.MaxRequests,
		Message:       "too many reservation attempts",
	}
	redisClient := cache.RedisClient()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/items/:item_number/status", publicHandler.GetItemStatus)
			public.POST("/items/:item_number/reserve",
				RateLimitMiddleware(redisClient, reserveRule, KeyBySession), publicHandler.ReserveItem)
			public.POST("/items/:item_number/release", publicHandler.ReleaseItem)
			public.GET("/cart", publicHandler.GetCart)
			public.POST("/cart/items",
				RateLimitMiddleware(redisClient, reserveRule, KeyBySession), publicHandler.AddCartItem)
			public.DELETE("/cart/items/:item_number", publicHandler.RemoveCartItem)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/items/:item_number/lock", adminHandler.LockItem)
			admin.DELETE("/items/:item_number/lock", adminHandler.UnlockItem)
			admin.GET("/items/:item_number/history", adminHandler.GetItemHistory)
			admin.POST("/reconcile/run", adminHandler.RunReconcile)
			admin.GET("/reconcile/blocked", adminHandler.GetBlockedRegistry)
			admin.GET("/reconcile/cache", adminHandler.GetCacheStats)
			admin.DELETE("/reconcile/cache", adminHandler.ClearCache)
			admin.POST("/carts/consistency-scan", adminHandler.TriggerConsistencyScan)
		}
	}

	return r
}
