package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Github   GithubConfig
	Builder  BuilderConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type GithubConfig struct {
	// ClientID and ClientSecret are the OAuth app credentials. The env
	// variable names are part of the documented install contract.
	ClientID      string
	ClientSecret  string
	WebhookSecret string
	// APIBaseURL overrides the GitHub API endpoint (tests, GHE).
	APIBaseURL string
	// DeployKey is the public half of the read-only key installed on
	// registered repositories.
	DeployKey string
}

type BuilderConfig struct {
	// BasePath is the root of the published sites on the static server.
	BasePath     string
	Workers      int
	QueueSize    int
	CloneTimeout time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
	// File enables rotated file output when set.
	File string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("ENV", "dev")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("SERVER_BASE_URL", "http://localhost:8000")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "franklin")
	v.SetDefault("DATABASE_PASSWORD", "franklin")
	v.SetDefault("DATABASE_NAME", "franklin")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("GITHUB_API_URL", "")
	v.SetDefault("GITHUB_WEBHOOK_SECRET", "")
	v.SetDefault("GITHUB_DEPLOY_KEY", "")
	v.SetDefault("BASE_PROJECT_PATH", "/var/www")
	v.SetDefault("BUILDER_WORKERS", 2)
	v.SetDefault("BUILDER_QUEUE_SIZE", 64)
	v.SetDefault("BUILDER_CLONE_TIMEOUT", "5m")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("LOGGER_FILE", "")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Env: v.GetString("ENV"),
		Server: ServerConfig{
			Host:    v.GetString("SERVER_HOST"),
			Port:    v.GetInt("SERVER_PORT"),
			BaseURL: v.GetString("SERVER_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durationOr(v, "DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Github: GithubConfig{
			ClientID:      v.GetString("CLIENT_ID"),
			ClientSecret:  v.GetString("CLIENT_SECRET"),
			WebhookSecret: v.GetString("GITHUB_WEBHOOK_SECRET"),
			APIBaseURL:    v.GetString("GITHUB_API_URL"),
			DeployKey:     v.GetString("GITHUB_DEPLOY_KEY"),
		},
		Builder: BuilderConfig{
			BasePath:     v.GetString("BASE_PROJECT_PATH"),
			Workers:      v.GetInt("BUILDER_WORKERS"),
			QueueSize:    v.GetInt("BUILDER_QUEUE_SIZE"),
			CloneTimeout: durationOr(v, "BUILDER_CLONE_TIMEOUT", 5*time.Minute),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
			File:   v.GetString("LOGGER_FILE"),
		},
	}

	if cfg.Github.ClientID == "" || cfg.Github.ClientSecret == "" {
		return nil, fmt.Errorf("CLIENT_ID and CLIENT_SECRET must be set")
	}

	return cfg, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
