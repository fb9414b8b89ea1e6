// Package config handles application configuration loading and validation using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/abontemps/classquest/internal/models"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Class     ClassConfig     `mapstructure:"class"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	QuestPack QuestPackConfig `mapstructure:"questpack"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// ClassConfig contains the gamification tunables handed to the award engine.
type ClassConfig struct {
	Name                    string `mapstructure:"name"`
	XPPerLevel              int    `mapstructure:"xp_per_level"`
	StreakThresholdForBadge int    `mapstructure:"streak_threshold_for_badge"`
	AllowNegativeXP         bool   `mapstructure:"allow_negative_xp"`
	MilestoneStep           int    `mapstructure:"milestone_step"`
}

// Settings converts the class section into engine settings.
func (c ClassConfig) Settings() models.Settings {
	return models.Settings{
		ClassName:               c.Name,
		XPPerLevel:              c.XPPerLevel,
		StreakThresholdForBadge: c.StreakThresholdForBadge,
		AllowNegativeXP:         c.AllowNegativeXP,
		ClassMilestoneStep:      c.MilestoneStep,
	}
}

// DatabaseConfig contains storage settings. Driver is "sqlite" (default,
// single-file classroom install) or "postgres".
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SQLiteConfig contains the SQLite database file location.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig contains PostgreSQL connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis cache connection settings. Leave Host empty to
// disable caching.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

// SchedulerConfig contains cron job settings.
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BadgeSweep    string `mapstructure:"badge_sweep"`    // cron expression for the nightly auto-badge sweep
	SnapshotPrune string `mapstructure:"snapshot_prune"` // cron expression for snapshot compaction
	Timezone      string `mapstructure:"timezone"`
	KeepSnapshots int    `mapstructure:"keep_snapshots"`
}

// GetLocation returns the scheduler timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// QuestPackConfig points at an optional YAML quest/badge pack loaded at startup.
type QuestPackConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/classquest/")
	}

	setDefaults(v)

	// Explicit environment bindings for 12-factor deployments.
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	_ = v.BindEnv("class.name", "CLASS_NAME")
	_ = v.BindEnv("class.xp_per_level", "CLASS_XP_PER_LEVEL")
	_ = v.BindEnv("class.streak_threshold_for_badge", "CLASS_STREAK_THRESHOLD")
	_ = v.BindEnv("class.allow_negative_xp", "CLASS_ALLOW_NEGATIVE_XP")
	_ = v.BindEnv("class.milestone_step", "CLASS_MILESTONE_STEP")

	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.sqlite.path", "SQLITE_PATH")
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")

	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.badge_sweep", "SCHEDULER_BADGE_SWEEP")
	_ = v.BindEnv("scheduler.snapshot_prune", "SCHEDULER_SNAPSHOT_PRUNE")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	_ = v.BindEnv("questpack.path", "QUESTPACK_PATH")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults plus environment variables
		// are a complete configuration for the sqlite install.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "production")

	v.SetDefault("class.name", models.DefaultClassName)
	v.SetDefault("class.xp_per_level", models.DefaultXPPerLevel)
	v.SetDefault("class.streak_threshold_for_badge", models.DefaultStreakThreshold)
	v.SetDefault("class.allow_negative_xp", models.DefaultAllowNegativeXP)
	v.SetDefault("class.milestone_step", models.DefaultClassMilestoneStep)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite.path", "classquest.db")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 10)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.ttl", 60)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.badge_sweep", "0 3 * * *")
	v.SetDefault("scheduler.snapshot_prune", "30 3 * * *")
	v.SetDefault("scheduler.timezone", "Local")
	v.SetDefault("scheduler.keep_snapshots", 20)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	case "postgres":
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	if c.Class.XPPerLevel <= 0 {
		return fmt.Errorf("class.xp_per_level must be positive")
	}
	if c.Class.StreakThresholdForBadge <= 0 {
		return fmt.Errorf("class.streak_threshold_for_badge must be positive")
	}
	if c.Class.MilestoneStep <= 0 {
		return fmt.Errorf("class.milestone_step must be positive")
	}
	if c.Scheduler.Enabled {
		if _, err := c.Scheduler.GetLocation(); err != nil {
			return fmt.Errorf("invalid scheduler.timezone: %w", err)
		}
	}
	return nil
}
