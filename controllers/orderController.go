package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meethahouse/dessert-api/initializers"
	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/models"
	"github.com/meethahouse/dessert-api/repository"
	"github.com/meethahouse/dessert-api/utils"
	"go.uber.org/zap"
)

const (
	maxOrderRefAttempts = 5
	notifyTimeout       = 10 * time.Second
)

// notifyWG lets tests wait for the post-create notifications.
var notifyWG sync.WaitGroup

func CreateOrder(ctx *gin.Context) {
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	now := time.Now().UTC()
	order := models.Order{
		ID:                uuid.NewString(),
		OrderID:           strings.TrimSpace(req.OrderID),
		Name:              strings.TrimSpace(req.Name),
		Phone:             req.Phone,
		DessertID:         req.DessertID,
		DessertName:       strings.TrimSpace(req.DessertName),
		Quantity:          req.Quantity,
		TotalAmount:       *req.TotalAmount,
		TransactionID:     strings.TrimSpace(req.TransactionID),
		TransactionStatus: models.TransactionPending,
		ServingStatus:     models.ServingPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := saveOrder(ctx.Request.Context(), &order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrderRef) {
			respondWithError(ctx, http.StatusConflict, "Order reference already exists", err)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create order", err)
		return
	}

	logger.Log.Info("Order created",
		zap.String("id", order.ID),
		zap.String("order_id", order.OrderID),
		zap.String("dessert_id", order.DessertID),
		zap.Int("quantity", order.Quantity),
	)
	notifyOrderCreated(order)

	sendJSONResponse(ctx, http.StatusCreated, order)
}

// saveOrder inserts order, generating a fresh reference on collision unless
// the caller supplied one.
func saveOrder(ctx context.Context, order *models.Order) error {
	if order.OrderID != "" {
		return initializers.Store.CreateOrder(ctx, order)
	}

	for attempt := 1; attempt <= maxOrderRefAttempts; attempt++ {
		order.OrderID = utils.GenerateOrderRef()
		err := initializers.Store.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderRef) {
			return err
		}
		logger.Log.Warn("Order reference collision", zap.String("order_id", order.OrderID), zap.Int("attempt", attempt))
	}
	return fmt.Errorf("no free order reference after %d attempts", maxOrderRefAttempts)
}

// notifyOrderCreated tells the kitchen queue and the shop inbox about a new
// order. Failures are logged and never surface to the buyer.
func notifyOrderCreated(order models.Order) {
	notifyWG.Add(1)
	go func() {
		defer notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := initializers.Publisher.PublishOrderCreated(ctx, order); err != nil {
			logger.Log.Error("Failed to publish order event", zap.String("order_id", order.OrderID), zap.Error(err))
		}

		cfg := initializers.Cfg
		if cfg == nil || !cfg.Mail.Enabled() || cfg.NotifyEmail == "" {
			return
		}
		data := utils.OrderEmailData{
			OrderRef:      order.OrderID,
			BuyerName:     order.Name,
			Phone:         order.Phone,
			DessertName:   order.DessertName,
			Quantity:      order.Quantity,
			TotalAmount:   order.TotalAmount,
			TransactionID: order.TransactionID,
		}
		subject := fmt.Sprintf("New order %s: %d x %s", order.OrderID, order.Quantity, order.DessertName)
		if err := utils.SendEmail(cfg.Mail, cfg.NotifyEmail, subject, data, cfg.EmailTemplate); err != nil {
			logger.Log.Error("Failed to send new order email", zap.String("order_id", order.OrderID), zap.Error(err))
		}
	}()
}

func GetOrders(ctx *gin.Context) {
	orders, err := initializers.Store.ListOrders(ctx.Request.Context())
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch orders", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	sendJSONResponse(ctx, http.StatusOK, orders)
}

func GetOrder(ctx *gin.Context) {
	order, err := initializers.Store.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch order", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, order)
}

// UpdateOrder applies a partial status change. The two status fields are
// independent and any value may follow any other.
func UpdateOrder(ctx *gin.Context) {
	var req models.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Empty() {
		sendErrorResponse(ctx, http.StatusBadRequest, "Nothing to update")
		return
	}

	id := ctx.Param("id")
	order, err := initializers.Store.UpdateOrderStatus(ctx.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update order", err)
		return
	}

	logger.Log.Info("Order updated", zap.String("id", id), zap.Any("fields", req.Fields()))
	sendJSONResponse(ctx, http.StatusOK, order)
}
