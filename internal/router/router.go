package router

import (
	"fmt"
	"strings"

	"github.com/mercato-next/internal/cache"
	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/http/handlers"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := handlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mc"
	}
	redisClient := cache.Client()
	limits := cfg.Security.RateLimit
	readRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart_read", redisPrefix),
		WindowSeconds: limits.WindowSeconds,
		MaxRequests:   limits.ReadMaxRequests,
	}
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart_write", redisPrefix),
		WindowSeconds: limits.WindowSeconds,
		MaxRequests:   limits.WriteMaxRequests,
	}
	bulkRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart_bulk", redisPrefix),
		WindowSeconds: limits.WindowSeconds,
		MaxRequests:   limits.BulkMaxRequests,
	}
	clearRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart_clear", redisPrefix),
		WindowSeconds: limits.WindowSeconds,
		MaxRequests:   limits.ClearMaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组（购物车接口全部需要用户鉴权）
	apiV1 := r.Group("/api/v1")
	{
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey))
		{
			user.GET("/cart", RateLimitMiddleware(redisClient, readRule, KeyByUserID), handler.GetCart)
			user.GET("/cart/summary", RateLimitMiddleware(redisClient, readRule, KeyByUserID), handler.GetCartSummary)
			user.POST("/cart/items", RateLimitMiddleware(redisClient, writeRule, KeyByUserID), handler.AddCartItem)
			user.POST("/cart/items/bulk", RateLimitMiddleware(redisClient, bulkRule, KeyByUserID), handler.AddCartItemsBulk)
			user.PUT("/cart/items/:product_id", RateLimitMiddleware(redisClient, writeRule, KeyByUserID), handler.UpdateCartItem)
			user.DELETE("/cart/items/:product_id", RateLimitMiddleware(redisClient, writeRule, KeyByUserID), handler.DeleteCartItem)
			user.DELETE("/cart", RateLimitMiddleware(redisClient, clearRule, KeyByUserID), handler.ClearCart)
			user.POST("/cart/checkout/prepare", RateLimitMiddleware(redisClient, writeRule, KeyByUserID), handler.PrepareCheckout)
			user.POST("/cart/sync-prices", RateLimitMiddleware(redisClient, writeRule, KeyByUserID), handler.SyncCartPrices)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
