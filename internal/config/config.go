package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	GitHub    OAuthClientConfig
	OIDC      OIDCConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig points at the relational store holding users, chats and documents.
type DatabaseConfig struct {
	Driver       string // postgres | sqlite
	URL          string
	MaxOpenConns int
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type AuthConfig struct {
	Secret          string
	URL             string
	TrustHost       bool
	Provider        string // github | oidc
	SessionStrategy string // jwt | database
	SessionStore    string // sql | redis | mongo
	SessionMaxAge   time.Duration
}

type OAuthClientConfig struct {
	ClientID     string
	ClientSecret string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("MONGODB_DATABASE", "lumen")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("AUTH_URL", "http://localhost:5001")
	viper.SetDefault("AUTH_TRUST_HOST", true)
	viper.SetDefault("AUTH_PROVIDER", "github")
	viper.SetDefault("AUTH_SESSION_STRATEGY", "jwt")
	viper.SetDefault("AUTH_SESSION_STORE", "sql")
	viper.SetDefault("AUTH_SESSION_MAX_AGE", 30*24*60*60)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_USE_REDIS", false)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(viper.GetString("DATABASE_DRIVER")),
			URL:          viper.GetString("DATABASE_URL"),
			MaxOpenConns: viper.GetInt("DATABASE_MAX_OPEN_CONNS"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			Secret:          viper.GetString("AUTH_SECRET"),
			URL:             strings.TrimRight(viper.GetString("AUTH_URL"), "/"),
			TrustHost:       viper.GetBool("AUTH_TRUST_HOST"),
			Provider:        strings.ToLower(viper.GetString("AUTH_PROVIDER")),
			SessionStrategy: strings.ToLower(viper.GetString("AUTH_SESSION_STRATEGY")),
			SessionStore:    strings.ToLower(viper.GetString("AUTH_SESSION_STORE")),
			SessionMaxAge:   time.Duration(viper.GetInt("AUTH_SESSION_MAX_AGE")) * time.Second,
		},
		GitHub: OAuthClientConfig{
			ClientID:     viper.GetString("GITHUB_ID"),
			ClientSecret: viper.GetString("GITHUB_SECRET"),
		},
		OIDC: OIDCConfig{
			Issuer:       viper.GetString("OIDC_ISSUER"),
			ClientID:     viper.GetString("OIDC_CLIENT_ID"),
			ClientSecret: viper.GetString("OIDC_CLIENT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("environment variable DATABASE_URL is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	switch c.Auth.Provider {
	case "github", "oidc":
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.Auth.Provider)
	}
	switch c.Auth.SessionStrategy {
	case "jwt", "database":
	default:
		return fmt.Errorf("unsupported AUTH_SESSION_STRATEGY %q", c.Auth.SessionStrategy)
	}
	switch c.Auth.SessionStore {
	case "sql", "redis", "mongo":
	default:
		return fmt.Errorf("unsupported AUTH_SESSION_STORE %q", c.Auth.SessionStore)
	}
	if c.Auth.SessionMaxAge <= 0 {
		return fmt.Errorf("AUTH_SESSION_MAX_AGE must be positive")
	}
	if c.Auth.Secret == "" {
		if c.Server.Environment == "production" {
			return fmt.Errorf("environment variable AUTH_SECRET is required in production")
		}
		logger.Warn("AUTH_SECRET is not set; set a secure value in production")
	}
	return nil
}
