package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is loaded from the environment. Live provider credentials win over
// sandbox ones when both are set.
type Config struct {
	Port          string        `envconfig:"PORT" default:"3000"`
	PublicBaseURL string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	MongoURL    string `envconfig:"MONGO_DB_URL"`
	MongoDBName string `envconfig:"MONGO_DB_NAME" default:"marketplace"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	PayPalBaseURL         string `envconfig:"PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	PayPalLiveClientID    string `envconfig:"PAYPAL_LIVE_CLIENT_ID"`
	PayPalLiveSecret      string `envconfig:"PAYPAL_LIVE_SECRET"`
	PayPalSandboxClientID string `envconfig:"PAYPAL_SANDBOX_CLIENT_ID"`
	PayPalSandboxSecret   string `envconfig:"PAYPAL_SANDBOX_SECRET"`

	PostgresDSN    string `envconfig:"POSTGRES_DSN"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"./internal/archive/migrations"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	ShippingPrice float64 `envconfig:"SHIPPING_PRICE" default:"10"`
	BrandName     string  `envconfig:"BRAND_NAME" default:"mymarketplace"`
	PayeeEmail    string  `envconfig:"PAYEE_EMAIL" default:"mariosyian2@hotmail.com"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// PayPalClientID prefers the live credential, falling back to sandbox.
func (c *Config) PayPalClientID() string {
	if c.PayPalLiveClientID != "" {
		return c.PayPalLiveClientID
	}
	return c.PayPalSandboxClientID
}

func (c *Config) PayPalSecret() string {
	if c.PayPalLiveSecret != "" {
		return c.PayPalLiveSecret
	}
	return c.PayPalSandboxSecret
}
