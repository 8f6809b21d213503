package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Reviews  ReviewsConfig  `mapstructure:"reviews"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CatalogConfig holds the external catalog service configuration
type CatalogConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	PageSize             int    `mapstructure:"page_size"`
	Timeout              int    `mapstructure:"timeout"` // seconds, 0 disables the per-request timeout
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"` // 0 means unlimited
}

// ReviewsConfig holds the rating bounds enforced by review forms
type ReviewsConfig struct {
	MinRating     float64 `mapstructure:"min_rating"` // create form
	MaxRating     float64 `mapstructure:"max_rating"`
	EditMinRating float64 `mapstructure:"edit_min_rating"`
	EditMaxRating float64 `mapstructure:"edit_max_rating"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// DatabaseConfig holds the product snapshot database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds Redis connection details for the categories cache
type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	CategoriesTTL int    `mapstructure:"categories_ttl"` // seconds
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load loads configuration from config.yaml in the working directory, a .env file and
// environment variable overrides. Both files are optional.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory for config.yaml.
func LoadFrom(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must be set")
	}
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog.page_size must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Reviews.MinRating > c.Reviews.MaxRating {
		return fmt.Errorf("reviews.min_rating (%v) exceeds reviews.max_rating (%v)",
			c.Reviews.MinRating, c.Reviews.MaxRating)
	}
	if c.Reviews.EditMinRating > c.Reviews.EditMaxRating {
		return fmt.Errorf("reviews.edit_min_rating (%v) exceeds reviews.edit_max_rating (%v)",
			c.Reviews.EditMinRating, c.Reviews.EditMaxRating)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("catalog.base_url", "https://next-ecommerce-api.vercel.app")
	v.SetDefault("catalog.page_size", 20)
	v.SetDefault("catalog.timeout", 30)
	v.SetDefault("catalog.max_retries", 0)
	v.SetDefault("catalog.max_requests_per_second", 0)

	v.SetDefault("reviews.min_rating", 0)
	v.SetDefault("reviews.max_rating", 5)
	v.SetDefault("reviews.edit_min_rating", 1)
	v.SetDefault("reviews.edit_max_rating", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.user", "storefront_user")
	v.SetDefault("database.password", "storefront_pass")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.categories_ttl", 3600)
}
