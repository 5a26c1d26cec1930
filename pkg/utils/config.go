package utils

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Identity IdentityConfig
	Payment  PaymentConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	CORSOrigins []string
}

type DatabaseConfig struct {
	URI  string
	Name string
}

type SessionConfig struct {
	ExpiryDays int
}

type IdentityConfig struct {
	URL string
}

type PaymentConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("MONGO_DB", "event-ticketing")
	viper.SetDefault("SESSION_EXPIRY_DAYS", 7)
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("CORS_ORIGINS", "*")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Port:        viper.GetString("PORT"),
			Debug:       viper.GetBool("DEBUG"),
			LogPath:     viper.GetString("LOG_PATH"),
			CORSOrigins: splitOrigins(viper.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			URI:  viper.GetString("MONGO_URI"),
			Name: viper.GetString("MONGO_DB"),
		},
		Session: SessionConfig{
			ExpiryDays: viper.GetInt("SESSION_EXPIRY_DAYS"),
		},
		Identity: IdentityConfig{
			URL: viper.GetString("IDENTITY_URL"),
		},
		Payment: PaymentConfig{
			SecretKey:     viper.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      viper.GetString("CURRENCY"),
		},
	}

	return config, nil
}

// splitOrigins parses the comma-separated CORS_ORIGINS value.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
