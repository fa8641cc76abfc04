package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout     string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	NATS struct {
		Enabled       bool   `yaml:"enabled" env:"NATS_ENABLED"`
		URL           string `yaml:"url" env:"NATS_URL"`
		SubjectPrefix string `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX"`
	} `yaml:"nats"`

	Mail struct {
		Provider       string `yaml:"provider" env:"MAIL_PROVIDER"`
		SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
		FromEmail      string `yaml:"from_email" env:"MAIL_FROM_EMAIL"`
		FromName       string `yaml:"from_name" env:"MAIL_FROM_NAME"`
		Concurrency    int    `yaml:"concurrency" env:"MAIL_CONCURRENCY"`
	} `yaml:"mail"`

	Matching struct {
		MinScore     float64 `yaml:"min_score" env:"MATCHING_MIN_SCORE"`
		DefaultLimit int     `yaml:"default_limit" env:"MATCHING_DEFAULT_LIMIT"`
		MaxLimit     int     `yaml:"max_limit" env:"MATCHING_MAX_LIMIT"`
		CandidateCap int     `yaml:"candidate_cap" env:"MATCHING_CANDIDATE_CAP"`
		CacheTTL     string  `yaml:"cache_ttl" env:"MATCHING_CACHE_TTL"`
	} `yaml:"matching"`

	RateLimit struct {
		Enabled           bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
		RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
		Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
	} `yaml:"rate_limit"`

	Seed struct {
		UniversityName   string `yaml:"university_name" env:"SEED_UNIVERSITY_NAME"`
		UniversitySlug   string `yaml:"university_slug" env:"SEED_UNIVERSITY_SLUG"`
		UniversityDomain string `yaml:"university_domain" env:"SEED_UNIVERSITY_DOMAIN"`
		AdminEmail       string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword    string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables.
// Precedence (lowest to highest): defaults, YAML file, environment.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv populates the process environment from a .env file. Variables that
// are already set win over the file.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "15s"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "unilink"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "unilink.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.Addr = "localhost:6379"

	config.NATS.URL = "nats://127.0.0.1:4222"
	config.NATS.SubjectPrefix = "unilink"

	config.Mail.Provider = "log"
	config.Mail.FromEmail = "no-reply@unilink.app"
	config.Mail.FromName = "UniLink"
	config.Mail.Concurrency = 8

	config.Matching.MinScore = 30
	config.Matching.DefaultLimit = 10
	config.Matching.MaxLimit = 50
	config.Matching.CandidateCap = 500
	config.Matching.CacheTTL = "10m"

	config.RateLimit.Enabled = true
	config.RateLimit.RequestsPerSecond = 5
	config.RateLimit.Burst = 10

	config.Seed.UniversityName = "UniLink University"
	config.Seed.UniversitySlug = "unilink"
	config.Seed.AdminEmail = "admin@unilink.app"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"database conn max lifetime":   config.Database.ConnMaxLifetime,
		"server read timeout":          config.Server.ReadTimeout,
		"server write timeout":         config.Server.WriteTimeout,
		"server shutdown timeout":      config.Server.ShutdownTimeout,
		"matching cache ttl":           config.Matching.CacheTTL,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Matching.MinScore < 0 || config.Matching.MinScore > 100 {
		return fmt.Errorf("matching min score must be between 0 and 100")
	}
	if config.Matching.DefaultLimit <= 0 || config.Matching.MaxLimit < config.Matching.DefaultLimit {
		return fmt.Errorf("matching limits are invalid: default %d, max %d", config.Matching.DefaultLimit, config.Matching.MaxLimit)
	}

	switch strings.ToLower(config.Mail.Provider) {
	case "log":
	case "sendgrid":
		if config.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key is required when mail provider is sendgrid")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", config.Mail.Provider)
	}
	if config.Mail.Concurrency <= 0 {
		return fmt.Errorf("mail concurrency must be positive")
	}

	if config.RateLimit.Enabled && (config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive requests per second and burst")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
