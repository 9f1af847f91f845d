package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/meethahouse/dessert-api/controllers"
)

func OrderRoutes(api *gin.RouterGroup, admin ...gin.HandlerFunc) {
	orders := api.Group("/orders")
	orders.POST("", controllers.CreateOrder)

	protected := orders.Group("", admin...)
	{
		protected.GET("", controllers.GetOrders)
		protected.GET("/:id", controllers.GetOrder)
		protected.PATCH("/:id", controllers.UpdateOrder)
	}
}
