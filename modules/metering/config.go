package metering

import (
	"errors"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/platefulapp/plateful/pkg/httpserver"
	"github.com/platefulapp/plateful/pkg/mongo"
	"github.com/platefulapp/plateful/pkg/redis"
	"github.com/platefulapp/plateful/pkg/subscription"
)

// Config aggregates everything the metering module needs from the environment.
type Config struct {
	HTTP   httpserver.Config
	Mongo  mongo.Config
	Redis  redis.Config
	Paddle subscription.PaddleConfig

	// PlanCatalogPath optionally points at a YAML plan table; the built-in
	// defaults apply when empty.
	PlanCatalogPath string `env:"PLAN_CATALOG_PATH"`

	// Premium price IDs at the billing provider.
	PremiumMonthlyPriceID string `env:"PREMIUM_MONTHLY_PRICE_ID"`
	PremiumYearlyPriceID  string `env:"PREMIUM_YEARLY_PRICE_ID"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// LoadConfig reads a .env file when present and parses the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
