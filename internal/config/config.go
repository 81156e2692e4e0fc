package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	GitHubToken        string
	BaseScore          int
	CelebrateFullScore bool
	LogLevel           slog.Level
	LogFormat          string
}

// Load reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates the numeric fields. It uses the
// Viper library to handle configuration loading and precedence.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("BASE_SCORE", 100)
	viper.SetDefault("CELEBRATE_FULL_SCORE", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file loaded", "error", err)
		}
	}
	viper.AutomaticEnv()

	baseScore := viper.GetInt("BASE_SCORE")
	if baseScore <= 0 {
		return nil, fmt.Errorf("BASE_SCORE must be positive, got %d", baseScore)
	}

	// Parse the log level string into a slog.Level type.
	var logLevel slog.Level
	logLevelStr := strings.ToLower(viper.GetString("LOG_LEVEL"))
	switch logLevelStr {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	case "info":
		logLevel = slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", logLevelStr)
		logLevel = slog.LevelInfo
	}

	return &Config{
		GitHubToken:        viper.GetString("GITHUB_TOKEN"),
		BaseScore:          baseScore,
		CelebrateFullScore: viper.GetBool("CELEBRATE_FULL_SCORE"),
		LogLevel:           logLevel,
		LogFormat:          viper.GetString("LOG_FORMAT"),
	}, nil
}
