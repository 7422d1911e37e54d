package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// History backends.
const (
	HistoryMemory   = "memory"
	HistoryPostgres = "postgres"
	HistoryRedis    = "redis"
)

// Simulation holds all configuration for a skill simulation session.
type Simulation struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Session identity (keys persisted upgrade history and stats)
	SessionID string `yaml:"session_id"`

	// Slots
	MaxSlots int `yaml:"max_slots"`

	// Timing
	TickInterval time.Duration `yaml:"tick_interval"` // timer advance cadence (default: 20ms)
	PollInterval time.Duration `yaml:"poll_interval"` // auto-activation poll (default: 100ms)

	// Size multiplier at which max-passive-reached is announced (0 = never)
	MaxSizeMultiplier float64 `yaml:"max_size_multiplier"`

	// Data
	CatalogPath string `yaml:"catalog_path"`
	ScriptPath  string `yaml:"script_path"`

	// Stop the simulation once the script has played (default: run until signaled)
	StopAfterScript bool `yaml:"stop_after_script"`

	// Upgrade history and stats storage
	HistoryBackend string         `yaml:"history_backend"`
	Database       DatabaseConfig `yaml:"database"`
	Redis          RedisConfig    `yaml:"redis"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel:       "info",
		SessionID:      "local",
		MaxSlots:       4,
		TickInterval:   20 * time.Millisecond,
		PollInterval:   100 * time.Millisecond,
		CatalogPath:    "config/skills.yaml",
		HistoryBackend: HistoryMemory,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "skillcore",
			Password: "skillcore",
			DBName:   "skillcore",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
	}
}

// LoadSimulation loads simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would make the simulation unusable.
func (c Simulation) Validate() error {
	if c.MaxSlots < 1 {
		return fmt.Errorf("max_slots must be at least 1, got %d", c.MaxSlots)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.MaxSizeMultiplier < 0 {
		return fmt.Errorf("max_size_multiplier must not be negative, got %v", c.MaxSizeMultiplier)
	}
	switch c.HistoryBackend {
	case HistoryMemory, HistoryPostgres:
	case HistoryRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis history backend")
		}
	default:
		return fmt.Errorf("unknown history_backend %q", c.HistoryBackend)
	}
	return nil
}
