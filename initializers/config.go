package initializers

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meethahouse/dessert-api/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// The single admin credential is a placeholder. ADMIN_PASSWORD_HASH (bcrypt)
// takes precedence over the plain ADMIN_PASSWORD, which is hashed at startup.
const (
	defaultAdminEmail    = "admin@dessertshop.local"
	defaultAdminPassword = "sweets123"
)

type Config struct {
	Port               string
	Env                string
	DBDriver           string
	MongoURI           string
	MongoDatabase      string
	MySQLDSN           string
	RedisURL           string
	CacheTTL           time.Duration
	RabbitMQURL        string
	RabbitMQQueue      string
	ChannelPoolSize    int
	S3Bucket           string
	JWTSecret          string
	TokenTTL           time.Duration
	AdminEmail         string
	AdminPassHash      string
	AllowedOrigins     []string
	LoginRatePerMinute int
	LoginBurst         int
	Mail               utils.MailConfig
	NotifyEmail        string
	EmailTemplate      string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "3000"),
		Env:             getEnv("APP_ENV", "development"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "dessertshop"),
		MySQLDSN:        os.Getenv("MYSQL_DSN"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CacheTTL:        getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		RabbitMQQueue:   getEnv("RABBITMQ_QUEUE", "kitchen_orders"),
		ChannelPoolSize: getEnvAsInt("CHANNEL_POOL_SIZE", 4),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        getEnvAsDuration("TOKEN_TTL", 12*time.Hour),
		AdminEmail:      getEnv("ADMIN_EMAIL", defaultAdminEmail),
		AdminPassHash:   os.Getenv("ADMIN_PASSWORD_HASH"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		Mail: utils.MailConfig{
			From:     os.Getenv("FROM_EMAIL"),
			Password: os.Getenv("FROM_EMAIL_PASSWORD"),
			Host:     os.Getenv("FROM_EMAIL_SMTP"),
			Address:  os.Getenv("SMTP_ADDRESS"),
		},
		LoginRatePerMinute: getEnvAsInt("LOGIN_RATE_PER_MIN", 10),
		LoginBurst:         getEnvAsInt("LOGIN_BURST", 5),
		NotifyEmail:        os.Getenv("SHOP_NOTIFY_EMAIL"),
		EmailTemplate:      getEnv("NEW_ORDER_TEMPLATE", "templates/new_order.html"),
	}

	switch cfg.DBDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required when DB_DRIVER=%s", DriverMongo)
		}
	case DriverMySQL:
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("MYSQL_DSN is required when DB_DRIVER=%s", DriverMySQL)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.AdminPassHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(getEnv("ADMIN_PASSWORD", defaultAdminPassword)), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		cfg.AdminPassHash = string(hash)
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
