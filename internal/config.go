// Package internal holds process-level wiring shared by the server binary:
// configuration, the logger factory and database migrations.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the storefront's runtime configuration.
type Config struct {
	Env      string
	LogLevel string
	Port     uint16

	// Cart holds cart persistence configuration.
	Cart CartConfig

	// Backend configures the commerce backend client.
	Backend BackendConfig

	// NATS configures the event bus. An empty URL disables events and the
	// Bling worker.
	NATS NATSConfig

	// SessionTTL bounds checkout session idle lifetime.
	SessionTTL time.Duration
}

// CartConfig selects and configures the cart repository.
type CartConfig struct {
	// Backend is "memory" or "postgres".
	Backend string

	// DatabaseURL is required when Backend is "postgres".
	DatabaseURL string
}

// BackendConfig configures the commerce backend client.
type BackendConfig struct {
	// URL is the backend API root.
	URL string

	// Timeout bounds each backend request.
	Timeout time.Duration

	// ServiceToken authenticates background work (the Bling worker) that
	// runs outside any shopper request.
	ServiceToken string
}

// NATSConfig configures the event bus.
type NATSConfig struct {
	URL string
}

// NewConfig loads configuration from the environment, with a .env file
// layered underneath when one exists in the working directory or up to two
// levels above it.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		dir, _ := os.Getwd()
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				break
			}
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 8080)
	v.SetDefault("CART_BACKEND", "memory")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BACKEND_URL", "http://localhost:3000/api")
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("BACKEND_SERVICE_TOKEN", "")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("SESSION_TTL", "2h")

	cfg := &Config{
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Port:     uint16(v.GetUint32("PORT")),
		Cart: CartConfig{
			Backend:     v.GetString("CART_BACKEND"),
			DatabaseURL: v.GetString("DATABASE_URL"),
		},
		Backend: BackendConfig{
			URL:          v.GetString("BACKEND_URL"),
			Timeout:      v.GetDuration("BACKEND_TIMEOUT"),
			ServiceToken: v.GetString("BACKEND_SERVICE_TOKEN"),
		},
		NATS: NATSConfig{
			URL: v.GetString("NATS_URL"),
		},
		SessionTTL: v.GetDuration("SESSION_TTL"),
	}

	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("ENV must be dev or prod, got %q", cfg.Env)
	}

	switch cfg.Cart.Backend {
	case "memory":
	case "postgres":
		if cfg.Cart.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL required when CART_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("CART_BACKEND must be memory or postgres, got %q", cfg.Cart.Backend)
	}

	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("BACKEND_URL must be set")
	}

	if cfg.Env == "prod" && cfg.NATS.URL != "" && cfg.Backend.ServiceToken == "" {
		return nil, fmt.Errorf("BACKEND_SERVICE_TOKEN required for the sync worker in production")
	}

	return cfg, nil
}

// Production reports whether the process runs with production settings.
func (c *Config) Production() bool {
	return c.Env == "prod"
}
