package http

import (
	"github.com/FENGsir1992/mall-payment-service/internal/delivery/http/handlers"
	"github.com/FENGsir1992/mall-payment-service/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PaymentHandler  *handlers.PaymentHandler
	CallbackHandler *handlers.CallbackHandler
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// provider webhooks authenticate by signature, not session
	callbacks := router.Group("/callbacks")
	{
		callbacks.POST("/wechat", deps.CallbackHandler.WechatNotify)
		callbacks.POST("/alipay", deps.CallbackHandler.AlipayNotify)
	}

	v1 := router.Group("/v1")
	v1.Use(middleware.UserAuth())
	{
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.CreatePayment)
			payments.POST("/refund", deps.PaymentHandler.Refund)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("/:id/sync", deps.PaymentHandler.SyncPayment)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/sweeps", deps.PaymentHandler.TriggerSweep)
		}
	}

	return router
}
