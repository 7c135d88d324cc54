package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/yigit/mobility/internal/pkg/helpers"
	"gopkg.in/yaml.v3"
)

// Badge overrides the label and color of one status
type Badge struct {
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port          string `yaml:"port" env:"SERVER_PORT"`
		Mode          string `yaml:"mode" env:"SERVER_MODE"`
		PublicBaseURL string `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		Seed            bool   `yaml:"seed" env:"DB_SEED"`
		SeedPassword    string `yaml:"seed_password" env:"DB_SEED_PASSWORD"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Driver       string        `yaml:"driver" env:"STORAGE_DRIVER"`
		Path         string        `yaml:"path" env:"STORAGE_PATH"`
		SigningKey   string        `yaml:"signing_key" env:"STORAGE_SIGNING_KEY"`
		Bucket       string        `yaml:"bucket" env:"STORAGE_BUCKET"`
		Region       string        `yaml:"region" env:"STORAGE_REGION"`
		Endpoint     string        `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
		AccessKey    string        `yaml:"access_key" env:"STORAGE_ACCESS_KEY"`
		SecretKey    string        `yaml:"secret_key" env:"STORAGE_SECRET_KEY"`
		PathStyle    bool          `yaml:"path_style" env:"STORAGE_PATH_STYLE"`
		SignedURLTTL time.Duration `yaml:"signed_url_ttl" env:"STORAGE_SIGNED_URL_TTL"`
	} `yaml:"storage"`

	Webhook struct {
		URL     string        `yaml:"url" env:"WEBHOOK_N8N_URL"`
		Timeout time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT"`
	} `yaml:"webhook"`

	Redis struct {
		URL      string        `yaml:"url" env:"REDIS_URL"`
		StatsTTL time.Duration `yaml:"stats_ttl" env:"REDIS_STATS_TTL"`
	} `yaml:"redis"`

	Workflow struct {
		EmailDomains   []string         `yaml:"email_domains" env:"WORKFLOW_EMAIL_DOMAINS"`
		RequiredECTS   int              `yaml:"required_ects" env:"WORKFLOW_REQUIRED_ECTS"`
		MaxUploadBytes int64            `yaml:"max_upload_bytes" env:"WORKFLOW_MAX_UPLOAD_BYTES"`
		Labels         map[string]Badge `yaml:"labels"`
	} `yaml:"workflow"`

	Notifications struct {
		// AllEvents persists inbox rows for every event instead of only the validations
		AllEvents bool `yaml:"all_events" env:"NOTIFICATIONS_ALL_EVENTS"`
	} `yaml:"notifications"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env only fills variables that are not already set in the process environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.PublicBaseURL = "http://localhost:8080"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "mobility"
	config.Database.SSLMode = "disable"
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"
	config.Database.Seed = true
	config.Database.SeedPassword = "ChangeMe123!"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "mobility"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.Driver = "local"
	config.Storage.Path = "uploads"
	config.Storage.SignedURLTTL = 60 * time.Second

	config.Webhook.Timeout = 5 * time.Second

	config.Redis.StatsTTL = 5 * time.Minute

	config.Workflow.EmailDomains = []string{"@ece.fr", "@edu.ece.fr"}
	config.Workflow.RequiredECTS = 30
	config.Workflow.MaxUploadBytes = 10 * 1024 * 1024
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	switch config.Storage.Driver {
	case "local":
		if config.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the local driver")
		}
	case "s3":
		if config.Storage.Bucket == "" || config.Storage.Region == "" {
			return fmt.Errorf("storage bucket and region are required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Storage.SignedURLTTL <= 0 {
		return fmt.Errorf("storage signed URL TTL must be positive")
	}

	if len(config.Workflow.EmailDomains) == 0 {
		return fmt.Errorf("at least one allowed email domain is required")
	}

	return nil
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTokenExpiration)
	return d
}

// ConnMaxLifetime returns the parsed pool connection lifetime, defaulting to one hour
func (c *Config) ConnMaxLifetime() time.Duration {
	if c.Database.ConnMaxLifetime == "" {
		return time.Hour
	}
	return helpers.ParseDuration(c.Database.ConnMaxLifetime, time.Hour)
}

// StorageSigningKey is the HMAC key of local download links, falling back to the JWT secret
func (c *Config) StorageSigningKey() string {
	if c.Storage.SigningKey != "" {
		return c.Storage.SigningKey
	}
	return c.JWT.Secret
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
