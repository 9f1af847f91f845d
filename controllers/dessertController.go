package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meethahouse/dessert-api/initializers"
	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/media"
	"github.com/meethahouse/dessert-api/models"
	"github.com/meethahouse/dessert-api/repository"
	"go.uber.org/zap"
)

const maxImageSize = 5 << 20

func GetDesserts(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	if desserts, ok := initializers.Cache.GetList(reqCtx); ok {
		sendJSONResponse(ctx, http.StatusOK, desserts)
		return
	}

	desserts, err := initializers.Store.ListDesserts(reqCtx)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch desserts", err)
		return
	}
	if desserts == nil {
		desserts = []models.Dessert{}
	}
	initializers.Cache.SetList(reqCtx, desserts)

	sendJSONResponse(ctx, http.StatusOK, desserts)
}

func GetDessert(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	id := ctx.Param("id")
	if dessert, ok := initializers.Cache.Get(reqCtx, id); ok {
		sendJSONResponse(ctx, http.StatusOK, dessert)
		return
	}

	dessert, err := initializers.Store.GetDessert(reqCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Dessert not found")
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch dessert", err)
		return
	}
	initializers.Cache.Set(reqCtx, dessert)

	sendJSONResponse(ctx, http.StatusOK, dessert)
}

func CreateDessert(ctx *gin.Context) {
	var req models.CreateDessertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	dessert := models.Dessert{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       *req.Price,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		CreatedAt:   time.Now().UTC(),
	}
	if err := initializers.Store.CreateDessert(ctx.Request.Context(), &dessert); err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create dessert", err)
		return
	}
	initializers.Cache.Invalidate(ctx.Request.Context(), dessert.ID)

	logger.Log.Info("Dessert created", zap.String("id", dessert.ID), zap.String("name", dessert.Name))
	sendJSONResponse(ctx, http.StatusCreated, dessert)
}

// UploadDessertImage stores the multipart "image" file in object storage and
// points the dessert's image_url at it.
func UploadDessertImage(ctx *gin.Context) {
	if initializers.Uploader == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	reqCtx := ctx.Request.Context()
	id := ctx.Param("id")
	if _, err := initializers.Store.GetDessert(reqCtx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Dessert not found")
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to validate dessert", err)
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "No image uploaded", err)
		return
	}
	if file.Size > maxImageSize {
		sendErrorResponse(ctx, http.StatusRequestEntityTooLarge, "Image exceeds 5MB")
		return
	}

	f, err := file.Open()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Unreadable image", err)
		return
	}
	defer f.Close()

	url, err := initializers.Uploader.UploadDessertImage(reqCtx, id, file.Filename, file.Header.Get("Content-Type"), f)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImageType) {
			respondWithError(ctx, http.StatusUnsupportedMediaType, "Unsupported image type", err)
			return
		}
		respondWithError(ctx, http.StatusBadGateway, "Failed to upload image", err)
		return
	}

	dessert, err := initializers.Store.UpdateDessertImage(reqCtx, id, url)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Dessert not found")
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to save image", err)
		return
	}
	initializers.Cache.Invalidate(reqCtx, id)

	sendJSONResponse(ctx, http.StatusOK, dessert)
}
