// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMySQL    = "mysql"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// TraceStdout exports spans to stderr.
	TraceStdout bool `env:"TRACE_STDOUT" envDefault:"false"`

	Currency string `env:"CART_CURRENCY" envDefault:"BRL"`
	Locale   string `env:"CART_LOCALE" envDefault:"pt-BR"`

	Inventory InventoryConfig `envPrefix:"INVENTORY_"`
	Storage   StorageConfig   `envPrefix:"CART_STORAGE_"`
}

type InventoryConfig struct {
	URL string `env:"URL" envDefault:"http://localhost:3333"`
	// Timeout of zero leaves lookups unbounded.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s"`
}

type StorageConfig struct {
	Driver      string `env:"DRIVER" envDefault:"file"`
	Slot        string `env:"SLOT" envDefault:"@RocketShoes:cart"`
	FilePath    string `env:"FILE_PATH"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	MySQLDSN    string `env:"MYSQL_DSN"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if cfg.Storage.FilePath == "" {
		cfg.Storage.FilePath = defaultFilePath()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT[%s] is not one of text, json", c.LogFormat)
	}

	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("CART_CURRENCY[%s] is not valid: %w", c.Currency, err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("CART_LOCALE[%s] is not valid: %w", c.Locale, err)
	}

	if c.Inventory.URL == "" {
		return fmt.Errorf("INVENTORY_URL is empty")
	}
	if c.Inventory.Timeout < 0 {
		return fmt.Errorf("INVENTORY_TIMEOUT is negative")
	}

	return c.Storage.Validate()
}

func (s StorageConfig) Validate() error {
	if s.Slot == "" {
		return fmt.Errorf("CART_STORAGE_SLOT is empty")
	}

	switch s.Driver {
	case DriverMemory:
	case DriverFile:
		if s.FilePath == "" {
			return fmt.Errorf("CART_STORAGE_FILE_PATH is empty")
		}
	case DriverPostgres:
		if s.PostgresDSN == "" {
			return fmt.Errorf("CART_STORAGE_POSTGRES_DSN is required for driver %s", s.Driver)
		}
	case DriverRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("CART_STORAGE_REDIS_ADDR is required for driver %s", s.Driver)
		}
	case DriverMySQL:
		if s.MySQLDSN == "" {
			return fmt.Errorf("CART_STORAGE_MYSQL_DSN is required for driver %s", s.Driver)
		}
	default:
		return fmt.Errorf("CART_STORAGE_DRIVER[%s] is not supported", s.Driver)
	}

	return nil
}

// CurrencyUnit is only meaningful on a validated config.
func (c Config) CurrencyUnit() currency.Unit {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.XXX
	}
	return unit
}

func (c Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}

func defaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cart.json"
	}
	return filepath.Join(dir, "shopcart", "cart.json")
}
