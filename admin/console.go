// Package admin is the order console: it lists orders and updates their
// payment and serving status one field at a time.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/models"
	"go.uber.org/zap"
)

var (
	ErrUpdateInProgress = errors.New("update already in progress for this field")
	ErrInvalidStatus    = errors.New("invalid status value")
	ErrNotLoggedIn      = errors.New("admin login required")
)

type Field string

const (
	FieldTransactionStatus Field = "transaction_status"
	FieldServingStatus     Field = "serving_status"
)

// OrderAPI is the subset of *apiclient.Client the console needs.
type OrderAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id string, update models.UpdateOrderRequest) (*models.Order, error)
	SetToken(token string)
}

type busyKey struct {
	orderID string
	field   Field
}

type Console struct {
	api OrderAPI
	log *zap.Logger

	mu     sync.Mutex
	user   string
	orders []models.Order
	busy   map[busyKey]bool
}

func NewConsole(api OrderAPI, log *zap.Logger) *Console {
	return &Console{api: api, log: logger.OrNop(log), busy: map[busyKey]bool{}}
}

// Login authenticates and loads the order list.
func (c *Console) Login(ctx context.Context, email, password string) error {
	resp, err := c.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.Role != models.RoleAdmin {
		c.api.SetToken("")
		return ErrNotLoggedIn
	}

	c.mu.Lock()
	c.user = resp.User
	c.mu.Unlock()

	_ = c.Refresh(ctx)
	return nil
}

func (c *Console) Logout() {
	c.api.SetToken("")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = ""
	c.orders = nil
}

func (c *Console) User() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Refresh refetches every order. On failure the error is logged and the list
// becomes empty.
func (c *Console) Refresh(ctx context.Context) error {
	orders, err := c.api.ListOrders(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Error("Failed to fetch orders", zap.Error(err))
		c.orders = nil
		return err
	}
	c.orders = orders
	return nil
}

// Orders returns the last fetched list, newest first.
func (c *Console) Orders() []models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orders == nil {
		return []models.Order{}
	}
	return append([]models.Order(nil), c.orders...)
}

// Busy reports whether an update of that order's field is in flight.
func (c *Console) Busy(orderID string, field Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[busyKey{orderID, field}]
}

func (c *Console) SetTransactionStatus(ctx context.Context, orderID string, status models.TransactionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return c.update(ctx, orderID, FieldTransactionStatus, models.UpdateOrderRequest{TransactionStatus: &status})
}

func (c *Console) SetServingStatus(ctx context.Context, orderID string, status models.ServingStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return c.update(ctx, orderID, FieldServingStatus, models.UpdateOrderRequest{ServingStatus: &status})
}

// update sends one field change. Success triggers a full refetch; failure
// leaves the current list untouched.
func (c *Console) update(ctx context.Context, orderID string, field Field, req models.UpdateOrderRequest) error {
	key := busyKey{orderID, field}

	c.mu.Lock()
	if c.busy[key] {
		c.mu.Unlock()
		return ErrUpdateInProgress
	}
	c.busy[key] = true
	c.mu.Unlock()

	_, err := c.api.UpdateOrder(ctx, orderID, req)

	c.mu.Lock()
	delete(c.busy, key)
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("Order update failed", zap.String("id", orderID), zap.String("field", string(field)), zap.Error(err))
		return fmt.Errorf("update %s: %w", field, err)
	}

	c.log.Info("Order updated", zap.String("id", orderID), zap.String("field", string(field)))
	_ = c.Refresh(ctx)
	return nil
}
