package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/meethahouse/dessert-api/controllers"
)

func DefaultRoutes(server *gin.Engine) {
	server.GET("/", controllers.GetHome)
	server.GET("/api/health", controllers.GetHealth)
}
