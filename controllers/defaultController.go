package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meethahouse/dessert-api/models"
)

func sendJSONResponse(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, models.ErrorResponse{Error: message})
}

// respondWithError includes err as details for client errors only; server
// errors are logged by the request logger through ctx.Error.
func respondWithError(ctx *gin.Context, status int, message string, err error) {
	body := models.ErrorResponse{Error: message}
	if err != nil {
		_ = ctx.Error(err)
		if status < http.StatusInternalServerError {
			body.Details = err.Error()
		}
	}
	sendJSONResponse(ctx, status, body)
}

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Meetha House dessert API.

DESSERTS
- GET "/api/desserts" - List the catalogue
- GET "/api/desserts/:id" - Get a dessert by ID
- POST "/api/desserts" - Add a dessert (admin)
- POST "/api/desserts/:id/image" - Upload a dessert image (admin)

ORDERS
- POST "/api/orders" - Place an order for one dessert line
- GET "/api/orders" - List orders, newest first (admin)
- GET "/api/orders/:id" - Get an order by ID (admin)
- PATCH "/api/orders/:id" - Update transaction or serving status (admin)

AUTH
- POST "/api/login" - Admin login

HEALTH
- GET "/api/health" - Liveness check`

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": message})
}

func GetHealth(ctx *gin.Context) {
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Server is running!",
	})
}
