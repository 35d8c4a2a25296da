package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Twitter  TwitterConfig
	Server   ServerConfig
	App      AppConfig
	Solana   SolanaConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// TwitterConfig holds Twitter/X.com OAuth settings
type TwitterConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	BearerToken  string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret           string
	BindingTokenSecret  string
	InviteCodesPerUser  int
	InviteAcceptWindow  time.Duration
	ProfileRefreshEvery time.Duration
}

// SolanaConfig holds Solana network settings for wallet binding
type SolanaConfig struct {
	Network     string
	DeepLinkURL string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "xogs"),
		},
		Twitter: TwitterConfig{
			ClientID:     getEnv("TWITTER_CLIENT_ID", ""),
			ClientSecret: getEnv("TWITTER_CLIENT_SECRET", ""),
			CallbackURL:  getEnv("TWITTER_CALLBACK_URL", "http://localhost:8080/auth/twitter/callback"),
			BearerToken:  getEnv("TWITTER_BEARER_TOKEN", ""),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			BindingTokenSecret:  getEnv("BINDING_TOKEN_SECRET", ""),
			InviteCodesPerUser:  getEnvInt("INVITE_CODES_PER_USER", 5),
			InviteAcceptWindow:  getEnvDuration("INVITE_ACCEPT_WINDOW", 5*time.Minute),
			ProfileRefreshEvery: getEnvDuration("PROFILE_REFRESH_EVERY", 6*time.Hour),
		},
		Solana: SolanaConfig{
			Network:     getEnv("SOLANA_NETWORK", "mainnet-beta"),
			DeepLinkURL: getEnv("WALLET_DEEPLINK_URL", "https://phantom.app/ul/browse"),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.App.BindingTokenSecret == "" {
		return nil, fmt.Errorf("BINDING_TOKEN_SECRET is required")
	}

	if config.Twitter.ClientID == "" || config.Twitter.ClientSecret == "" {
		return nil, fmt.Errorf("Twitter OAuth credentials are required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable with a fallback default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration gets a duration environment variable with a fallback default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
