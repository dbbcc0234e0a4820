// Package config loads service configuration from environment variables
// (with optional .env file support) using Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the service.
type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	LockStripes             int    `mapstructure:"LOCK_STRIPES"`
	ShutdownGraceSeconds    int    `mapstructure:"SHUTDOWN_GRACE_SECONDS"`
	RabbitMQURL             string `mapstructure:"RABBITMQ_URL"`
	TransferEventExchange   string `mapstructure:"TRANSFER_EVENT_EXCHANGE"`
	TransferEventRoutingKey string `mapstructure:"TRANSFER_EVENT_ROUTING_KEY"`
}

// Load reads configuration from environment variables, with an optional
// .env file at path.
func Load(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "mazebank")
	viper.SetDefault("LOCK_STRIPES", 64)
	viper.SetDefault("SHUTDOWN_GRACE_SECONDS", 30)
	viper.SetDefault("TRANSFER_EVENT_EXCHANGE", "mazebank.transfers")
	viper.SetDefault("TRANSFER_EVENT_ROUTING_KEY", "transfer.result")

	for _, key := range []string{
		"SERVER_PORT", "STORAGE_DRIVER", "DATABASE_URL",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"LOCK_STRIPES", "SHUTDOWN_GRACE_SECONDS", "RABBITMQ_URL",
		"TRANSFER_EVENT_EXCHANGE", "TRANSFER_EVENT_ROUTING_KEY",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env file is fine; the environment still applies.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// PostgresConnString returns DATABASE_URL when set and otherwise builds
// a connection string from the discrete DB_* parts.
func (c Config) PostgresConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}
