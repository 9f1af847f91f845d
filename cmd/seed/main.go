// Command seed replaces the dessert catalogue with the shop's default menu.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meethahouse/dessert-api/cache"
	"github.com/meethahouse/dessert-api/initializers"
	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/models"
	"github.com/meethahouse/dessert-api/repository"
	"go.uber.org/zap"
)

func defaultMenu(now time.Time) []models.Dessert {
	return []models.Dessert{
		{
			ID:          uuid.NewString(),
			Name:        "Basundi",
			Description: "Rich, creamy milk slowly reduced and sweetened, flavoured with cardamom and garnished with nuts.",
			Price:       39,
			ImageURL:    "basundi",
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Double ka Meetha",
			Description: "Hyderabadi bread pudding of fried bread soaked in saffron milk and sugar syrup.",
			Price:       59,
			ImageURL:    "double-ka-meetha",
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Kaddu ka Kheer",
			Description: "Pumpkin simmered in milk with sugar and cardamom, topped with dry fruits.",
			Price:       69,
			ImageURL:    "kaddu-ki-kheer",
			CreatedAt:   now,
		},
	}
}

// seed replaces the catalogue and flushes the cached copy so the API stops
// serving ids that no longer exist.
func seed(ctx context.Context, store repository.DessertStore, dc *cache.DessertCache, desserts []models.Dessert) error {
	if err := store.ReplaceDesserts(ctx, desserts); err != nil {
		return fmt.Errorf("replace desserts: %w", err)
	}
	if err := dc.Flush(ctx); err != nil {
		return fmt.Errorf("flush dessert cache: %w", err)
	}
	return nil
}

func main() {
	initializers.LoadEnv()
	cfg, err := initializers.LoadConfig()
	if err != nil {
		logger.Initialize("")
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}
	logger.Initialize(cfg.Env)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := initializers.ConnectToDB(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := initializers.SyncDatabase(ctx, store); err != nil {
		logger.Log.Fatal("Failed to prepare database", zap.Error(err))
	}

	var dc *cache.DessertCache
	if cfg.RedisURL != "" {
		dc, err = cache.Connect(ctx, cfg.RedisURL, cfg.CacheTTL, logger.Log)
		if err != nil {
			logger.Log.Fatal("Failed to connect to cache", zap.Error(err))
		}
		defer dc.Close()
	}

	desserts := defaultMenu(time.Now().UTC())
	if err := seed(ctx, store, dc, desserts); err != nil {
		logger.Log.Fatal("Failed to seed desserts", zap.Error(err))
	}
	logger.Log.Info("Seeded desserts", zap.Int("count", len(desserts)), zap.String("driver", cfg.DBDriver))
}
