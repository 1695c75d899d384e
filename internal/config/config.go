// Package config loads settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads at startup.
type Config struct {
	AppEnv  string
	AppPort string

	StorageBackend string
	DBDriver       string
	DatabaseDSN    string
	MongoURL       string
	DBName         string

	SessionBackend string
	RedisURL       string
	SessionTTL     time.Duration
	SessionCookie  string

	RabbitMQURL      string
	RabbitMQExchange string

	JWTSecret   string
	CORSOrigins string
	SeedCatalog bool
}

// Load reads .env (when present) and the environment. A missing .env file is
// not an error.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("STORAGE_BACKEND", "memory")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:organica.db?cache=shared")
	v.SetDefault("MONGO_URL", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "organica")
	v.SetDefault("SESSION_BACKEND", "memory")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("SESSION_TTL", "4h")
	v.SetDefault("SESSION_COOKIE", "organica.sid")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "organica.orders")
	v.SetDefault("JWT_SECRET", "organica-secret")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SEED_CATALOG", true)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:           v.GetString("APP_ENV"),
		AppPort:          v.GetString("APP_PORT"),
		StorageBackend:   strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		MongoURL:         v.GetString("MONGO_URL"),
		DBName:           v.GetString("DB_NAME"),
		SessionBackend:   strings.ToLower(v.GetString("SESSION_BACKEND")),
		RedisURL:         v.GetString("REDIS_URL"),
		SessionTTL:       v.GetDuration("SESSION_TTL"),
		SessionCookie:    v.GetString("SESSION_COOKIE"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		CORSOrigins:      v.GetString("CORS_ORIGINS"),
		SeedCatalog:      v.GetBool("SEED_CATALOG"),
	}
	if !strings.HasPrefix(cfg.AppPort, ":") && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	switch cfg.StorageBackend {
	case "memory", "gorm", "mongo":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	switch cfg.SessionBackend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
