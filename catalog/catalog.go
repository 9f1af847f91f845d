// Package catalog reads the dessert menu for display.
package catalog

import (
	"context"

	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/models"
	"go.uber.org/zap"
)

// DessertAPI is satisfied by *apiclient.Client.
type DessertAPI interface {
	ListDesserts(ctx context.Context) ([]models.Dessert, error)
	GetDessert(ctx context.Context, id string) (*models.Dessert, error)
}

type Catalog struct {
	api DessertAPI
	log *zap.Logger
}

func New(api DessertAPI, log *zap.Logger) *Catalog {
	return &Catalog{api: api, log: logger.OrNop(log)}
}

// List never fails: a fetch error is logged and shows as an empty menu.
func (c *Catalog) List(ctx context.Context) []models.Dessert {
	desserts, err := c.api.ListDesserts(ctx)
	if err != nil {
		c.log.Error("Failed to fetch desserts", zap.Error(err))
		return []models.Dessert{}
	}
	if desserts == nil {
		return []models.Dessert{}
	}
	return desserts
}

// Get returns the apiclient error as is, so callers can tell a missing
// dessert (apiclient.IsNotFound) from an outage.
func (c *Catalog) Get(ctx context.Context, id string) (*models.Dessert, error) {
	return c.api.GetDessert(ctx, id)
}
