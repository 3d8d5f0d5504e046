package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"` // currently only "s3"
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type Config struct {
	PostgresDSN string `mapstructure:"postgres_dsn"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`

	RedisEnabled  bool   `mapstructure:"redis_enabled"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// Task intervals for the automation runner.
	NotificationInterval    time.Duration `mapstructure:"notification_interval"`
	PersonalizationInterval time.Duration `mapstructure:"personalization_interval"`
	CleanupInterval         time.Duration `mapstructure:"cleanup_interval"`
	ScheduleCheckInterval   time.Duration `mapstructure:"schedule_check_interval"`

	// Execution log retention and archival.
	LogRetentionDays   int                `mapstructure:"log_retention_days"`
	ArchiveEnabled     bool               `mapstructure:"archive_enabled"`
	ArchiveDestination string             `mapstructure:"archive_destination"` // "local" or "s3"
	ArchivePath        string             `mapstructure:"archive_path"`
	CloudStorage       CloudStorageConfig `mapstructure:"cloud_storage"`

	// Seed command sizes.
	SeedUsers     int `mapstructure:"seed_users"`
	SeedStores    int `mapstructure:"seed_stores"`
	SeedMenuItems int `mapstructure:"seed_menu_items"`
	SeedOrders    int `mapstructure:"seed_orders"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("notification_interval", time.Minute)
	viper.SetDefault("personalization_interval", 6*time.Hour)
	viper.SetDefault("cleanup_interval", 24*time.Hour)
	viper.SetDefault("schedule_check_interval", time.Hour)
	viper.SetDefault("log_retention_days", 30)
	viper.SetDefault("archive_destination", "local")
	viper.SetDefault("archive_path", "archive")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
