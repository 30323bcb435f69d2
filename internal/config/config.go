package config

import "github.com/spf13/viper"

// Config holds the runtime configuration for the storefront service.
// Values come from environment variables, with sensible local defaults.
type Config struct {
	AppPort     string
	MetricsPort string
	PostgresDSN string // When empty, a local SQLite file is used instead.
	SQLitePath  string
	RedisAddr   string // When empty, cart snapshots are kept in memory.
	RabbitMQURL string // When empty, event publishing is disabled.
}

// Load reads the configuration with Viper from the environment.
func Load() Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("METRICS_PORT", ":9091")
	viper.SetDefault("POSTGRES_DSN", "")
	viper.SetDefault("SQLITE_PATH", "store.db")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	return Config{
		AppPort:     viper.GetString("APP_PORT"),
		MetricsPort: viper.GetString("METRICS_PORT"),
		PostgresDSN: viper.GetString("POSTGRES_DSN"),
		SQLitePath:  viper.GetString("SQLITE_PATH"),
		RedisAddr:   viper.GetString("REDIS_ADDR"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
	}
}
