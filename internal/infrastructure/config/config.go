// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "NUTRIPLAN"

// Config holds all application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Ops          OpsConfig          `mapstructure:"ops"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Notification NotificationConfig `mapstructure:"notification"`
	Shopping     ShoppingConfig     `mapstructure:"shopping"`
	Progress     ProgressConfig     `mapstructure:"progress"`
	Monitoring   MonitoringConfig   `mapstructure:"monitoring"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS      bool          `mapstructure:"enable_cors"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// OpsConfig contains the metrics and health server configuration
type OpsConfig struct {
	Enable        bool   `mapstructure:"enable"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	MetricsPath   string `mapstructure:"metrics_path"`
	HealthPath    string `mapstructure:"health_path"`
	ReadinessPath string `mapstructure:"readiness_path"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver             string        `mapstructure:"driver"`
	Path               string        `mapstructure:"path"`
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Database           string        `mapstructure:"database"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	SSLMode            string        `mapstructure:"ssl_mode"`
	ReplicaHosts       []string      `mapstructure:"replica_hosts"`
	MaxOpenConns       int           `mapstructure:"max_open_conns"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel           string        `mapstructure:"log_level"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
	AutoMigrate        bool          `mapstructure:"auto_migrate"`
	Seed               bool          `mapstructure:"seed"`
	// SeedOwnerID owns the demo templates stored when Seed is set.
	SeedOwnerID string `mapstructure:"seed_owner_id"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Enable          bool          `mapstructure:"enable"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Password        string        `mapstructure:"password"`
	Database        int           `mapstructure:"database"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PoolSize        int           `mapstructure:"pool_size"`
	EnableCluster   bool          `mapstructure:"enable_cluster"`
	ClusterNodes    []string      `mapstructure:"cluster_nodes"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NotificationConfig selects and configures the plan notification adapter
type NotificationConfig struct {
	// Driver is one of log, webhook, redis.
	Driver         string            `mapstructure:"driver"`
	WebhookURL     string            `mapstructure:"webhook_url"`
	WebhookHeaders map[string]string `mapstructure:"webhook_headers"`
	Timeout        time.Duration     `mapstructure:"timeout"`
	RetryCount     int               `mapstructure:"retry_count"`
	Channel        string            `mapstructure:"channel"`
}

// ShoppingConfig contains shopping list generation settings
type ShoppingConfig struct {
	RulesFile   string   `mapstructure:"rules_file"`
	DefaultName string   `mapstructure:"default_name"`
	Exclude     []string `mapstructure:"exclude"`
}

// ProgressConfig contains progress analysis settings
type ProgressConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics  bool    `mapstructure:"enable_metrics"`
	EnableTracing  bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool    `mapstructure:"otlp_insecure"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
	ServiceVersion string  `mapstructure:"service_version"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enable          bool          `mapstructure:"enable"`
	RequestsPerMin  int           `mapstructure:"requests_per_min"`
	BurstSize       int           `mapstructure:"burst_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Load loads configuration from .env, an optional file and environment variables
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch reloads the configuration whenever the file changes and hands the
// new value to onChange. Invalid reloads are logged and ignored.
func Watch(configPath string, logger *zap.Logger, onChange func(*Config)) error {
	v, err := newViper(configPath)
	if err != nil {
		return err
	}
	if v.ConfigFileUsed() == "" {
		return nil
	}

	logger = logger.Named("config")
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			logger.Warn("Ignoring invalid configuration reload", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("Configuration reloaded", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func newViper(configPath string) (*viper.Viper, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nutriplan")
	}

	// Enable environment variable override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPath == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "nutriplan")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.max_header_bytes", 1<<20) // 1MB
	v.SetDefault("server.max_body_bytes", 4<<20)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Ops defaults
	v.SetDefault("ops.enable", true)
	v.SetDefault("ops.host", "0.0.0.0")
	v.SetDefault("ops.port", 9090)
	v.SetDefault("ops.metrics_path", "/metrics")
	v.SetDefault("ops.health_path", "/health")
	v.SetDefault("ops.readiness_path", "/ready")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "nutriplan.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "nutriplan")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_query_threshold", "200ms")
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.enable", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.key_prefix", "nutriplan:")

	// Notification defaults
	v.SetDefault("notification.driver", "log")
	v.SetDefault("notification.timeout", "5s")
	v.SetDefault("notification.retry_count", 2)
	v.SetDefault("notification.channel", "nutriplan.plans")

	// Shopping defaults
	v.SetDefault("shopping.default_name", "Liste de courses")

	// Progress defaults
	v.SetDefault("progress.cache_ttl", "10m")

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.otlp_insecure", true)
	v.SetDefault("monitoring.sampling_rate", 0.1)

	// Rate limit defaults
	v.SetDefault("rate_limit.enable", true)
	v.SetDefault("rate_limit.requests_per_min", 120)
	v.SetDefault("rate_limit.burst_size", 20)
	v.SetDefault("rate_limit.cleanup_interval", "1m")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate required fields
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if c.Database.Seed && c.Database.SeedOwnerID == "" {
		return fmt.Errorf("database.seed_owner_id is required when database.seed is set")
	}

	switch c.Notification.Driver {
	case "log":
	case "webhook":
		if c.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required for the webhook driver")
		}
	case "redis":
		if !c.Redis.Enable {
			return fmt.Errorf("notification.driver redis requires redis.enable")
		}
	default:
		return fmt.Errorf("notification.driver must be log, webhook or redis, got %q", c.Notification.Driver)
	}

	// Validate port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Ops.Enable && (c.Ops.Port < 1 || c.Ops.Port > 65535) {
		return fmt.Errorf("ops.port must be between 1 and 65535")
	}

	if c.Monitoring.SamplingRate < 0 || c.Monitoring.SamplingRate > 1 {
		return fmt.Errorf("monitoring.sampling_rate must be between 0 and 1")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// GetDSN returns the primary database connection string
func (c *Config) GetDSN() string {
	return c.dsn(c.Database.Host)
}

// ReplicaDSNs returns one connection string per read replica
func (c *Config) ReplicaDSNs() []string {
	dsns := make([]string, 0, len(c.Database.ReplicaHosts))
	for _, host := range c.Database.ReplicaHosts {
		dsns = append(dsns, c.dsn(host))
	}
	return dsns
}

// MigrationURL returns the golang-migrate database URL for the pgx/v5 driver
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

func (c *Config) dsn(host string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host,
		c.Database.Port,
		c.Database.Username,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
