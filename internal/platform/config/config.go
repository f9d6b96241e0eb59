package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// DataFile is the primary store, rewritten after every mutating operation.
	DataFile string
	// BackupFile is the secondary store written by the backup scheduler.
	BackupFile string
	// BackupInterval is the fixed cadence of the backup scheduler.
	BackupInterval time.Duration

	// RateLimit uses the limiter formatted syntax, e.g. "100-M".
	RateLimit string
	// CORSAllowedOrigins lists allowed origins; "*" allows all.
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DATA_FILE", "data/accounts.csv")
	viper.SetDefault("BACKUP_FILE", "data/backup.csv")
	viper.SetDefault("BACKUP_INTERVAL", "10s")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.DataFile = viper.GetString("DATA_FILE")
	cfg.BackupFile = viper.GetString("BACKUP_FILE")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	backupIntervalStr := viper.GetString("BACKUP_INTERVAL")
	backupInterval, err := time.ParseDuration(backupIntervalStr)
	if err != nil || backupInterval <= 0 {
		backupInterval = 10 * time.Second
		log.Printf("Warning: Invalid value for BACKUP_INTERVAL ('%s'). Defaulting to %s.\n", backupIntervalStr, backupInterval)
	}
	cfg.BackupInterval = backupInterval

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}
