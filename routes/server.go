package routes

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/meethahouse/dessert-api/initializers"
	"github.com/meethahouse/dessert-api/middlewares"
	"github.com/meethahouse/dessert-api/utils"
	"go.uber.org/zap"
)

// ConfigureBinding registers the custom validation rules with gin's
// validator and rejects unknown JSON fields.
func ConfigureBinding() error {
	binding.EnableDecoderDisallowUnknownFields = true
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return utils.RegisterValidations(v)
}

// NewServer builds the engine with middleware and every route. It expects
// initializers.Cfg to be set.
func NewServer(log *zap.Logger) (*gin.Engine, error) {
	if err := ConfigureBinding(); err != nil {
		return nil, err
	}
	cfg := initializers.Cfg

	server := gin.New()
	server.Use(gin.Recovery(), middlewares.RequestLogger(log))
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	admin := []gin.HandlerFunc{middlewares.RequireAuth(cfg.JWTSecret), middlewares.RequireAdmin()}

	DefaultRoutes(server)
	api := server.Group("/api")
	AuthRoutes(api, middlewares.RateLimit(cfg.LoginRatePerMinute, cfg.LoginBurst))
	DessertRoutes(api, admin...)
	OrderRoutes(api, admin...)
	return server, nil
}
