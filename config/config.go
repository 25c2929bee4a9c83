package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreLevelDB  = "leveldb"
	StorePostgres = "postgres"
)

type Config struct {
	// Port prefers PORT (Render, Fly.io, Railway, etc.) then WHEEL_PORT.
	Port      int    `env:"PORT"`
	WheelPort int    `env:"WHEEL_PORT" envDefault:"8081"`
	DataDir   string `env:"WHEEL_DATA_DIR" envDefault:"data"`
	Store     string `env:"WHEEL_STORE" envDefault:"memory"`
	// DatabaseURL is read by the postgres backend through wheel.GetDB.
	DatabaseURL string `env:"DATABASE_URL"`

	FeedEndpoint string `env:"FEED_ENDPOINT"`
	FeedSecret   string `env:"FEED_SECRET"`
	FeedID       string `env:"FEED_ID" envDefault:"default"`
	// StaticPrice seeds draws when no feed endpoint is configured.
	StaticPrice uint64 `env:"FEED_STATIC_PRICE" envDefault:"0"`

	// PlatformURL selects the remote ledger. Empty keeps an in-process ledger
	// that starts with no balances; fund it through the bootstrap Balances.
	PlatformURL   string `env:"PLATFORM_URL"`
	PlatformToken string `env:"PLATFORM_TOKEN"`

	BootstrapFile    string `env:"WHEEL_BOOTSTRAP"`
	PrimaryAsset     string `env:"WHEEL_PRIMARY_ASSET" envDefault:"FRONK"`
	Initializer      string `env:"WHEEL_INITIALIZER"`
	DevWallet        string `env:"WHEEL_DEV_WALLET"`
	VaultSeedDeposit uint64 `env:"WHEEL_VAULT_SEED_DEPOSIT" envDefault:"0"`
	LegacyClaims     bool   `env:"WHEEL_LEGACY_CLAIMS" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// SpinRate is the per-caller spin budget in spins per second; 0 disables limiting.
	SpinRate  float64 `env:"WHEEL_SPIN_RATE" envDefault:"2"`
	SpinBurst int     `env:"WHEEL_SPIN_BURST" envDefault:"4"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port <= 0 {
		cfg.Port = cfg.WheelPort
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StoreMemory, StoreLevelDB, StorePostgres:
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", cfg.Store)
	}
	if cfg.Store == StorePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: postgres store requires DATABASE_URL")
	}
	if cfg.SpinRate < 0 || cfg.SpinBurst < 0 {
		return nil, fmt.Errorf("config: negative spin rate limit")
	}
	return cfg, nil
}
