package initializers

import (
	"context"

	"github.com/meethahouse/dessert-api/cache"
	"github.com/meethahouse/dessert-api/events"
	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/media"
	"github.com/meethahouse/dessert-api/repository"
	"go.uber.org/zap"
)

// Process-wide dependencies shared by the controllers.
var (
	Cfg       *Config
	Store     repository.Store
	Cache     *cache.DessertCache
	Publisher events.OrderPublisher = events.Noop{}
	Uploader  media.ImageUploader
)

var closers []func()

// Setup connects every backing service named in cfg. Only the database is
// mandatory; cache, broker and object storage degrade to disabled with a
// warning.
func Setup(ctx context.Context, cfg *Config) error {
	Cfg = cfg

	store, err := ConnectToDB(ctx, cfg)
	if err != nil {
		return err
	}
	if err := SyncDatabase(ctx, store); err != nil {
		_ = store.Close(ctx)
		return err
	}
	Store = store
	closers = append(closers, func() { _ = store.Close(context.Background()) })
	logger.Log.Info("Database connected", zap.String("driver", cfg.DBDriver))

	if cfg.RedisURL != "" {
		c, err := cache.Connect(ctx, cfg.RedisURL, cfg.CacheTTL, logger.Log)
		if err != nil {
			logger.Log.Warn("Dessert cache disabled", zap.Error(err))
		} else {
			Cache = c
			closers = append(closers, func() { _ = c.Close() })
		}
	}

	if cfg.RabbitMQURL != "" {
		pool, err := events.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQQueue, cfg.ChannelPoolSize)
		if err != nil {
			logger.Log.Warn("Kitchen order events disabled", zap.Error(err))
		} else {
			p := events.NewPublisher(pool, cfg.RabbitMQQueue)
			Publisher = p
			closers = append(closers, p.Close)
		}
	}

	if cfg.S3Bucket != "" {
		u, err := media.NewS3Uploader(ctx, cfg.S3Bucket)
		if err != nil {
			logger.Log.Warn("Dessert image uploads disabled", zap.Error(err))
		} else {
			Uploader = u
		}
	}
	return nil
}

// Teardown releases connections in reverse order of Setup.
func Teardown() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}
