package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/meethahouse/dessert-api/controllers"
)

func DessertRoutes(api *gin.RouterGroup, admin ...gin.HandlerFunc) {
	desserts := api.Group("/desserts")
	{
		desserts.GET("", controllers.GetDesserts)
		desserts.GET("/:id", controllers.GetDessert)
	}

	protected := desserts.Group("", admin...)
	{
		protected.POST("", controllers.CreateDessert)
		protected.POST("/:id/image", controllers.UploadDessertImage)
	}
}
