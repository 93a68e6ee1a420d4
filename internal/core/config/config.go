package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Environment string
	Host        string
	LogLevel    string

	Database  DatabaseConfig
	Security  SecurityConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
}

type DatabaseConfig struct {
	Driver        string
	URL           string
	MigrationsDir string
}

type SecurityConfig struct {
	JWTSecret string
}

type HTTPConfig struct {
	RequestTimeout time.Duration
	// TrustedProxies lists proxy addresses or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type SearchConfig struct {
	DefaultRadiusKm float64
	DefaultLimit    int
	MaxLimit        int
}

// Load reads config.yaml from ./config, . or /etc/foodshare when present, then
// lets environment variables override it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/foodshare/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_driver", DriverPostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("rate_limit_per_minute", 120)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("search_default_radius_km", 5)
	v.SetDefault("search_default_limit", 10)
	v.SetDefault("search_max_limit", 100)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Environment: v.GetString("app_env"),
		Host:        v.GetString("app_host"),
		LogLevel:    v.GetString("log_level"),
		Database: DatabaseConfig{
			Driver:        strings.ToLower(v.GetString("db_driver")),
			URL:           v.GetString("database_url"),
			MigrationsDir: v.GetString("migrations_dir"),
		},
		Security: SecurityConfig{
			JWTSecret: v.GetString("jwt_secret"),
		},
		HTTP: HTTPConfig{
			RequestTimeout: v.GetDuration("request_timeout"),
			TrustedProxies: v.GetStringSlice("trusted_proxies"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: v.GetInt("rate_limit_per_minute"),
			Burst:     v.GetInt("rate_limit_burst"),
		},
		Search: SearchConfig{
			DefaultRadiusKm: v.GetFloat64("search_default_radius_km"),
			DefaultLimit:    v.GetInt("search_default_limit"),
			MaxLimit:        v.GetInt("search_max_limit"),
		},
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %s", c.Database.Driver)
		}
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required for driver %s", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q, expected one of: %s, %s, %s",
			c.Database.Driver, DriverPostgres, DriverSQLite, DriverMemory)
	}

	if c.Search.DefaultRadiusKm <= 0 {
		return fmt.Errorf("SEARCH_DEFAULT_RADIUS_KM must be positive")
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be positive")
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("SEARCH_MAX_LIMIT must not be lower than SEARCH_DEFAULT_LIMIT")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesSQL reports whether the configured driver is backed by a database.
func (c *Config) UsesSQL() bool {
	return c.Database.Driver != DriverMemory
}
