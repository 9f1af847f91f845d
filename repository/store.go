package repository

import (
	"context"
	"errors"

	"github.com/meethahouse/dessert-api/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateOrderRef = errors.New("order reference already exists")
)

type DessertStore interface {
	ListDesserts(ctx context.Context) ([]models.Dessert, error)
	GetDessert(ctx context.Context, id string) (*models.Dessert, error)
	CreateDessert(ctx context.Context, dessert *models.Dessert) error
	UpdateDessertImage(ctx context.Context, id, imageURL string) (*models.Dessert, error)
	// ReplaceDesserts drops the whole catalogue and inserts desserts.
	ReplaceDesserts(ctx context.Context, desserts []models.Dessert) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	// ListOrders returns every order, newest first.
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, update models.UpdateOrderRequest) (*models.Order, error)
}

// Store is the persistence layer: desserts and orders at rest, no business
// rules beyond uniqueness of the order reference.
type Store interface {
	DessertStore
	OrderStore
	Close(ctx context.Context) error
}
