// Package config loads service settings from configs/.env and the process
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all service configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"db"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Log         LogConfig         `mapstructure:"log"`
	Calculation CalculationConfig `mapstructure:"calc"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the postgres connection string
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Development bool   `mapstructure:"development"`
}

// CalculationConfig tunes the duty engine
type CalculationConfig struct {
	// WorkingCurrency is the currency product values are expressed in
	WorkingCurrency string `mapstructure:"working_currency"`
	// DefaultCurrency is used when a request does not name a target currency
	DefaultCurrency string `mapstructure:"default_currency"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

const devJWTSecret = "default_super_secret_key"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "postgres")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("jwt.secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.development", false)

	v.SetDefault("calc.working_currency", "USD")
	v.SetDefault("calc.default_currency", "USD")

	v.SetDefault("cors.allow_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"})
}

// newViper maps nested keys onto flat env names: db.host -> DB_HOST, server.port -> SERVER_PORT.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Keep the variable names the deployment already uses.
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.gin_mode", "GIN_MODE")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	return v
}

// Load reads envFile (when present) into the environment and builds a validated Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// Missing file is fine; the environment may already be populated.
		_ = godotenv.Load(envFile)
	}

	v := newViper()
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	// AutomaticEnv does not split comma lists for slices during Unmarshal.
	if raw := v.GetString("cors.allow_origins"); raw != "" && strings.Contains(raw, ",") {
		cfg.CORS.AllowOrigins = splitList(raw)
	}

	cfg.Calculation.WorkingCurrency = strings.ToUpper(cfg.Calculation.WorkingCurrency)
	cfg.Calculation.DefaultCurrency = strings.ToUpper(cfg.Calculation.DefaultCurrency)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = devJWTSecret
	}

	return cfg, nil
}

// Validate checks required configuration values.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if len(c.Calculation.WorkingCurrency) != 3 {
		return fmt.Errorf("working currency must be a 3-letter code, got %q", c.Calculation.WorkingCurrency)
	}
	if len(c.Calculation.DefaultCurrency) != 3 {
		return fmt.Errorf("default currency must be a 3-letter code, got %q", c.Calculation.DefaultCurrency)
	}
	if c.Server.GinMode == "release" && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required in release mode")
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
