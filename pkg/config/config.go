package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // market timezones without a system zoneinfo

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"StockAnalog/internal/domain/repository"
	"StockAnalog/internal/services/analogs"
	"StockAnalog/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RequestTimeout  time.Duration `yaml:"request_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		Timezone        string        `yaml:"timezone" default:"UTC"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Store struct {
		Backend string `yaml:"backend" default:"clickhouse"`
		Table   string `yaml:"table" default:"price_snapshots"`
	} `yaml:"store"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	SQLite struct {
		Path        string        `yaml:"path" default:"data/stockanalog.db"`
		WAL         bool          `yaml:"wal" default:"true"`
		BusyTimeout time.Duration `yaml:"busy_timeout" default:"5s"`
		CacheSizeMB int           `yaml:"cache_size_mb" default:"64"`
	} `yaml:"sqlite"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl" default:"60s"`
		Memory  struct {
			MaxSize int           `yaml:"max_size" default:"1000"`
			TTL     time.Duration `yaml:"ttl" default:"15s"`
		} `yaml:"memory"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"stockanalog"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic" default:"aftermath.requests"`
		ResultTopic  string   `yaml:"result_topic" default:"aftermath.results"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"10ms"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"stockanalog-aftermath"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"aftermath.requests.dlq"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps" default:"20"`
		Burst   int     `yaml:"burst" default:"40"`
	} `yaml:"ratelimit"`
	Engine struct {
		ChangeRange       float64 `yaml:"change_range" default:"1.5"`
		MinDaysAgo        int     `yaml:"min_days_ago" default:"30"`
		MaxResults        int     `yaml:"max_results" default:"3"`
		DedupDays         int     `yaml:"dedup_days" default:"2"`
		ExcludeRadiusDays *int    `yaml:"exclude_radius_days"`
		ChangeWeight      float64 `yaml:"change_weight" default:"0.6"`
		VolumeWeight      float64 `yaml:"volume_weight" default:"0.4"`
		ShortHorizon      int     `yaml:"short_horizon" default:"5"`
		MediumHorizon     int     `yaml:"medium_horizon" default:"20"`
		RecoveryWindow    int     `yaml:"recovery_window" default:"30"`
	} `yaml:"analogs"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("SERVER_PORT"), c.Server.Port)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// defaults first so explicit zero values in the file win
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	backend := repository.Backend(strings.ToLower(strings.TrimSpace(c.Store.Backend)))
	if !repository.IsValidBackend(backend) {
		return fmt.Errorf("store.backend must be 'clickhouse' or 'sqlite', got '%s'", c.Store.Backend)
	}
	c.Store.Backend = string(backend)
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("server.timezone: %w", err)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("ratelimit.rps and ratelimit.burst must be positive")
	}
	if err := c.Analogs().Validate(); err != nil {
		return fmt.Errorf("analogs: %w", err)
	}
	return nil
}

// Analogs returns the engine tuning. exclude_radius_days follows dedup_days
// unless set explicitly.
func (c *Config) Analogs() analogs.Config {
	a := c.Engine
	radius := a.DedupDays
	if a.ExcludeRadiusDays != nil {
		radius = *a.ExcludeRadiusDays
	}
	return analogs.Config{
		ChangeRange:       a.ChangeRange,
		MinDaysAgo:        a.MinDaysAgo,
		MaxResults:        a.MaxResults,
		DedupDays:         a.DedupDays,
		ExcludeRadiusDays: radius,
		ChangeWeight:      a.ChangeWeight,
		VolumeWeight:      a.VolumeWeight,
		ShortHorizon:      a.ShortHorizon,
		MediumHorizon:     a.MediumHorizon,
		RecoveryWindow:    a.RecoveryWindow,
	}
}

// Location returns the market timezone used for bare dates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
