package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"invoice-import-backend/internal/logger"
	"invoice-import-backend/internal/models"
)

type Config struct {
	DatabaseURL string
	Port        string
	CORSOrigins []string

	Vendor models.Vendor

	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

var defaults = map[string]interface{}{
	"database_url":    "invoices.db",
	"port":            "8080",
	"cors_origins":    "http://localhost:3000",
	"vendor_name":     "Example Software Solutions, LLC",
	"vendor_address":  "100 Main Street\nSuite 200\nSpringfield, IL 62701",
	"vendor_email":    "billing@example.com",
	"vendor_phone":    "(555) 010-0100",
	"log_level":       "info",
	"log_format":      "console",
	"log_time_format": time.RFC3339,
	"log_output":      "stderr",
}

// NewViper returns a viper instance with defaults and environment binding.
// A non-empty configFile is read on top of them.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load reads .env (if present), the environment and an optional config file.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v, err := NewViper(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL: strings.TrimSpace(v.GetString("database_url")),
		Port:        strings.TrimSpace(v.GetString("port")),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		Vendor: models.Vendor{
			ID:      models.DefaultVendorID,
			Name:    v.GetString("vendor_name"),
			Address: v.GetString("vendor_address"),
			Email:   v.GetString("vendor_email"),
			Phone:   v.GetString("vendor_phone"),
		},
		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		LogTimeFormat: v.GetString("log_time_format"),
		LogOutput:     v.GetString("log_output"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if strings.TrimSpace(c.Vendor.Name) == "" {
		return errors.New("VENDOR_NAME is required")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
