package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"nestflow/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	API        APIConfig        `yaml:"api"`
	Messaging  MessagingConfig  `yaml:"messaging"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	DBName         string `yaml:"dbname"`
	SSLMode        string `yaml:"sslmode"`
	MaxConnections int    `yaml:"max_connections"`
}

// DSN builds a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	TokenTTL   string `yaml:"token_ttl"`
	BcryptCost int    `yaml:"bcrypt_cost"`
}

// TTL parses TokenTTL, falling back to seven days.
func (a AuthConfig) TTL() time.Duration {
	if d, err := time.ParseDuration(a.TokenTTL); err == nil && d > 0 {
		return d
	}
	return models.DefaultTokenTTLHours * time.Hour
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
	CacheTTL  int                `yaml:"cache_ttl"` // seconds
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MessagingConfig struct {
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"` // seconds
}

type LedgerConfig struct {
	Enabled         bool    `yaml:"enabled"`
	CredentialsFile string  `yaml:"credentials_file"`
	SpreadsheetID   string  `yaml:"spreadsheet_id"`
	MaxRetries      int     `yaml:"max_retries"`
	BaseDelay       string  `yaml:"base_delay"`
	MaxDelay        string  `yaml:"max_delay"`
	Factor          float64 `yaml:"factor"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case DriverPostgres:
		if c.Database.Postgres.Host == "" || c.Database.Postgres.DBName == "" {
			return errors.New("postgres host and dbname are required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "CHANGE_ME" {
		return errors.New("auth jwt secret is required")
	}

	if c.Ledger.Enabled && (c.Ledger.CredentialsFile == "" || c.Ledger.SpreadsheetID == "") {
		return errors.New("ledger requires credentials_file and spreadsheet_id")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "nestflow"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = 5432
	}
	if c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = "disable"
	}
	if c.Database.Postgres.MaxConnections == 0 {
		c.Database.Postgres.MaxConnections = 25
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 20
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 40
	}
	if c.API.CacheTTL == 0 {
		c.API.CacheTTL = models.DefaultCacheTTL
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Messaging.RateLimitMessages == 0 {
		c.Messaging.RateLimitMessages = models.RateLimitMessages
	}
	if c.Messaging.RateLimitWindow == 0 {
		c.Messaging.RateLimitWindow = models.RateLimitWindow
	}
	if c.Ledger.MaxRetries == 0 {
		c.Ledger.MaxRetries = 5
	}
	if c.Ledger.BaseDelay == "" {
		c.Ledger.BaseDelay = "2s"
	}
	if c.Ledger.MaxDelay == "" {
		c.Ledger.MaxDelay = "1m"
	}
	if c.Ledger.Factor == 0 {
		c.Ledger.Factor = 2
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
}
