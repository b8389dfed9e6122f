package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	DatabaseDriver                string   `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN                   string   `mapstructure:"DATABASE_DSN"`
	JWTSecret                     string   `mapstructure:"JWT_SECRET"`
	PublicURL                     string   `mapstructure:"PUBLIC_URL"`
	FrontendURL                   string   `mapstructure:"FRONTEND_URL"`
	EnableCORS                    bool     `mapstructure:"ENABLE_CORS"`
	CORSOrigins                   []string `mapstructure:"CORS_ORIGINS"`
	GoogleClientID                string   `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret            string   `mapstructure:"GOOGLE_CLIENT_SECRET"`
	FacebookClientID              string   `mapstructure:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret          string   `mapstructure:"FACEBOOK_CLIENT_SECRET"`
	OrganizerEmailDomain          string   `mapstructure:"ORGANIZER_EMAIL_DOMAIN"`
	CountedStatuses               []string `mapstructure:"COUNTED_STATUSES"`
	TimezoneOffsetHours           int      `mapstructure:"TIMEZONE_OFFSET_HOURS"`
	MinioEndpoint                 string   `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey                string   `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey                string   `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket                   string   `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL                   bool     `mapstructure:"MINIO_USE_SSL"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "kcamp.db")
	viper.SetDefault("PUBLIC_URL", "http://127.0.0.1:8080")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:5173")
	viper.SetDefault("CORS_ORIGINS", []string{"http://127.0.0.1:5173"})
	viper.SetDefault("ORGANIZER_EMAIL_DOMAIN", "kmitl.ac.th")
	viper.SetDefault("COUNTED_STATUSES", []string{"pending", "reviewing", "accepted"})
	viper.SetDefault("TIMEZONE_OFFSET_HOURS", 7)
	viper.SetDefault("MINIO_BUCKET", "kcamp")
	viper.SetDefault("MINIO_USE_SSL", true)

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("GOOGLE_CLIENT_ID")
	viper.BindEnv("GOOGLE_CLIENT_SECRET")
	viper.BindEnv("FACEBOOK_CLIENT_ID")
	viper.BindEnv("FACEBOOK_CLIENT_SECRET")
	viper.BindEnv("MINIO_ENDPOINT")
	viper.BindEnv("MINIO_ACCESS_KEY")
	viper.BindEnv("MINIO_SECRET_KEY")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	// Comma separated env values arrive as a single element.
	config.CORSOrigins = splitList(config.CORSOrigins)
	config.CountedStatuses = splitList(config.CountedStatuses)

	if config.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return &config
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
