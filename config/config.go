package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Smtp         Smtp
	Sandbox      Sandbox
	Fanout       Fanout
	App          App
	GeminiApiKey string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Smtp struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Sandbox points at the remote code-execution service.
type Sandbox struct {
	BaseURL string
	ApiKey  string
	Timeout time.Duration
}

// Fanout tunes the notification batcher; defaults respect the mail
// provider's documented rate limit.
type Fanout struct {
	BatchSize  int
	BatchDelay time.Duration
}

type App struct {
	// BaseURL is used to build candidate-facing deep links in emails.
	BaseURL string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SANDBOX_TIMEOUT_SECONDS", 30)
	viper.SetDefault("FANOUT_BATCH_SIZE", 50)
	viper.SetDefault("FANOUT_BATCH_DELAY_MS", 1000)
	viper.SetDefault("APP_BASE_URL", "http://localhost:3000")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Smtp.Host = viper.GetString("SMTP_HOST")
	config.Smtp.Port = viper.GetInt("SMTP_PORT")
	config.Smtp.User = viper.GetString("SMTP_USER")
	config.Smtp.Password = viper.GetString("SMTP_PASSWORD")
	config.Smtp.From = viper.GetString("SMTP_FROM")

	config.Sandbox.BaseURL = viper.GetString("SANDBOX_BASE_URL")
	config.Sandbox.ApiKey = viper.GetString("SANDBOX_API_KEY")
	config.Sandbox.Timeout = time.Duration(viper.GetInt("SANDBOX_TIMEOUT_SECONDS")) * time.Second

	config.Fanout.BatchSize = viper.GetInt("FANOUT_BATCH_SIZE")
	config.Fanout.BatchDelay = time.Duration(viper.GetInt("FANOUT_BATCH_DELAY_MS")) * time.Millisecond

	config.App.BaseURL = viper.GetString("APP_BASE_URL")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	log.Info().Str("port", config.Server.Port).Str("db", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
