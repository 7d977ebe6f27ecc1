package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Booking   BookingConfig   `yaml:"booking"`
	Matching  MatchingConfig  `yaml:"matching"`
	Payment   PaymentConfig   `yaml:"payment"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Type string `yaml:"type"` // "postgres" or "memory"
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig contains ledger settings
type BookingConfig struct {
	CommissionRate float64 `yaml:"commission_rate"`
	MaxRetries     int     `yaml:"max_retries"`
}

// MatchingConfig contains nearby search settings
type MatchingConfig struct {
	DefaultRadiusKm float64 `yaml:"default_radius_km"`
	MaxRadiusKm     float64 `yaml:"max_radius_km"`
	MaxResults      int     `yaml:"max_results"`
}

// PaymentConfig selects the payment processor
type PaymentConfig struct {
	Type       string `yaml:"type"` // "log" or "amqp"
	AMQPURL    string `yaml:"amqp_url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ResetMonthlyEarnings string `yaml:"reset_monthly_earnings"`
	RefreshGeoIndex      string `yaml:"refresh_geo_index"`
	RecomputeRatings     string `yaml:"recompute_ratings"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Storage
	if val := os.Getenv("STORAGE_TYPE"); val != "" {
		c.Storage.Type = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Booking
	if val := os.Getenv("COMMISSION_RATE"); val != "" {
		if rate, err := strconv.ParseFloat(val, 64); err == nil {
			c.Booking.CommissionRate = rate
		}
	}

	// Payment
	if val := os.Getenv("PAYMENT_TYPE"); val != "" {
		c.Payment.Type = val
	}
	if val := os.Getenv("AMQP_URL"); val != "" {
		c.Payment.AMQPURL = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "postgres"
	}
	switch c.Storage.Type {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.MaxOpenConns == 0 {
			c.Database.MaxOpenConns = 20
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Booking defaults
	if c.Booking.CommissionRate == 0 {
		c.Booking.CommissionRate = 0.2
	}
	if c.Booking.CommissionRate < 0 || c.Booking.CommissionRate > 1 {
		return fmt.Errorf("commission rate must be between 0 and 1: %v", c.Booking.CommissionRate)
	}
	if c.Booking.MaxRetries <= 0 {
		c.Booking.MaxRetries = 3
	}

	// Matching defaults
	if c.Matching.DefaultRadiusKm == 0 {
		c.Matching.DefaultRadiusKm = 10
	}
	if c.Matching.MaxRadiusKm == 0 {
		c.Matching.MaxRadiusKm = 50
	}
	if c.Matching.DefaultRadiusKm < 0 || c.Matching.MaxRadiusKm < c.Matching.DefaultRadiusKm {
		return fmt.Errorf("invalid matching radius: default %v, max %v", c.Matching.DefaultRadiusKm, c.Matching.MaxRadiusKm)
	}
	if c.Matching.MaxResults <= 0 {
		c.Matching.MaxResults = 50
	}

	// Payment
	if c.Payment.Type == "" {
		c.Payment.Type = "log"
	}
	switch c.Payment.Type {
	case "log":
	case "amqp":
		if c.Payment.AMQPURL == "" {
			return fmt.Errorf("amqp url is required for amqp payment processor")
		}
		if c.Payment.Exchange == "" {
			c.Payment.Exchange = "payments"
		}
		if c.Payment.RoutingKey == "" {
			c.Payment.RoutingKey = "payment.settle"
		}
	default:
		return fmt.Errorf("unknown payment type: %s", c.Payment.Type)
	}

	// Scheduler defaults
	if c.Scheduler.ResetMonthlyEarnings == "" {
		c.Scheduler.ResetMonthlyEarnings = "0 0 0 1 * *" // 1st of month at 12 AM UTC
	}
	if c.Scheduler.RefreshGeoIndex == "" {
		c.Scheduler.RefreshGeoIndex = "0 */5 * * * *" // Every 5 minutes
	}
	if c.Scheduler.RecomputeRatings == "" {
		c.Scheduler.RecomputeRatings = "0 0 3 * * *" // 3 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
