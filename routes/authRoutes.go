package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/meethahouse/dessert-api/controllers"
)

func AuthRoutes(api *gin.RouterGroup, limit gin.HandlerFunc) {
	api.POST("/login", limit, controllers.Login)
}
