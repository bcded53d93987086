package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal containers

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"store-admin/internal/core"
)

// EnvPrefix prefixes every environment override, e.g. STOREADMIN_SERVER_ADDR.
const EnvPrefix = "STOREADMIN"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Server      ServerConfig          `mapstructure:"server"`
	Auth        AuthConfig            `mapstructure:"auth"`
	DB          DBConfig              `mapstructure:"db"`
	Store       StoreDriverConfig     `mapstructure:"store"`
	Log         LogConfig             `mapstructure:"log"`
	Timezone    string                `mapstructure:"timezone"`
	Coupons     CouponsConfig         `mapstructure:"coupons"`
	Stores      map[string]StoreEntry `mapstructure:"stores"`
	Collections CollectionsConfig     `mapstructure:"collections"`
}

type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type DBConfig struct {
	URL         string `mapstructure:"url"`
	MaxConns    int32  `mapstructure:"max_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type StoreDriverConfig struct {
	Driver string `mapstructure:"driver"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CouponsConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// StoreEntry overrides the collection layout of one currency store. Empty fields keep the defaults.
type StoreEntry struct {
	PaymentMode       string `mapstructure:"payment_mode"`
	Products          string `mapstructure:"products"`
	Orders            string `mapstructure:"orders"`
	ConfirmedPayments string `mapstructure:"confirmed_payments"`
}

type CollectionsConfig struct {
	Coupons       string `mapstructure:"coupons"`
	ShippingCosts string `mapstructure:"shipping_costs"`
	Settings      string `mapstructure:"settings"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("db.url", "")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("log.level", "info")
	v.SetDefault("timezone", "Africa/Cairo")
	v.SetDefault("coupons.prefix", core.DefaultCouponPrefix)

	shared := core.DefaultSharedCollections()
	v.SetDefault("collections.coupons", shared.Coupons)
	v.SetDefault("collections.shipping_costs", shared.ShippingCosts)
	v.SetDefault("collections.settings", shared.Settings)
}

// Load reads .env (if present), then config.yaml from ./, ./deploy/ or /etc/store-admin/
// (if present), then STOREADMIN_* environment overrides. DATABASE_URL and JWT_SECRET are
// also honored.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("/etc/store-admin/")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("db.url", EnvPrefix+"_DB_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", EnvPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("server.allowed_origins", EnvPrefix+"_SERVER_ALLOWED_ORIGINS", "ALLOWED_ORIGINS")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the binaries cannot start without.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("db.url is required when store.driver is %s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown store.driver %q (want %s or %s)", c.Store.Driver, DriverMemory, DriverPostgres)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.StoreConfigs(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone the statistics day boundaries are anchored to.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// StoreConfigs merges the configured stores over the default layout.
func (c *Config) StoreConfigs() (map[core.Currency]core.StoreConfig, error) {
	stores := core.DefaultStoreConfigs()
	for code, entry := range c.Stores {
		currency, err := core.ParseCurrency(code)
		if err != nil {
			return nil, fmt.Errorf("stores.%s: %w", code, err)
		}
		sc := stores[currency]
		if entry.PaymentMode != "" {
			sc.PaymentMode = core.PaymentMode(entry.PaymentMode)
		}
		if entry.Products != "" {
			sc.Products = entry.Products
		}
		if entry.Orders != "" {
			sc.Orders = entry.Orders
		}
		if entry.ConfirmedPayments != "" {
			sc.ConfirmedPayments = entry.ConfirmedPayments
		}
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("stores.%s: %w", code, err)
		}
		stores[currency] = sc
	}
	return stores, nil
}

// SharedCollections returns the names of the collections not scoped to a currency store.
func (c *Config) SharedCollections() core.SharedCollections {
	return core.SharedCollections{
		Coupons:       c.Collections.Coupons,
		ShippingCosts: c.Collections.ShippingCosts,
		Settings:      c.Collections.Settings,
	}
}
