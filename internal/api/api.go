package api

import (
	"net/http"

	checkoutHandler "commerce-server/internal/checkout/handler"

	"github.com/gin-gonic/gin"
)

type API struct {
	router          *gin.RouterGroup
	checkoutHandler checkoutHandler.Handler
}

func New(router *gin.RouterGroup, checkoutHandler checkoutHandler.Handler) API {
	return API{
		router:          router,
		checkoutHandler: checkoutHandler,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	apiGroup := a.router.Group("/api")
	{
		checkoutGroup := apiGroup.Group("/checkout")
		checkoutGroup.POST("/payment", a.checkoutHandler.HandlePayment)
		checkoutGroup.POST("/retry", a.checkoutHandler.HandleRetry)
		checkoutGroup.GET("/customers/:customer_id/attempts", a.checkoutHandler.HandleListAttempts)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
