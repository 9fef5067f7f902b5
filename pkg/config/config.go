package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Disabled bool   `yaml:"disabled"`
		Path     string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Eastmoney struct {
		SnapshotURL   string        `yaml:"snapshot_url" default:"https://82.push2.eastmoney.com/api/qt/clist/get" validate:"required,url"`
		DatacenterURL string        `yaml:"datacenter_url" default:"https://datacenter-web.eastmoney.com/api/data/v1/get" validate:"required,url"`
		NewsURL       string        `yaml:"news_url" default:"https://np-listapi.eastmoney.com/comm/web/getListInfo" validate:"required,url"`
		Timeout       time.Duration `yaml:"timeout" default:"8s"`
		RPS           float64       `yaml:"rps" default:"2" validate:"gt=0"`
		Burst         int           `yaml:"burst" default:"2" validate:"gte=1"`
		PageSize      int           `yaml:"page_size" default:"6000" validate:"gte=1"`
	} `yaml:"eastmoney"`
	Fetch struct {
		MaxAttempts    int           `yaml:"max_attempts" default:"3" validate:"gte=1,lte=10"`
		Backoff        time.Duration `yaml:"backoff" default:"300ms"`
		MaxBackoff     time.Duration `yaml:"max_backoff" default:"2s"`
		Multiplier     float64       `yaml:"multiplier" default:"2"`
		AttemptTimeout time.Duration `yaml:"attempt_timeout" default:"5s"`
		Breaker        struct {
			ConsecutiveFailures uint32        `yaml:"consecutive_failures" default:"5"`
			OpenTimeout         time.Duration `yaml:"open_timeout" default:"30s"`
		} `yaml:"breaker"`
	} `yaml:"fetch"`
	Analysis struct {
		Deadline   time.Duration `yaml:"deadline" default:"15s"`
		NewsLimit  int           `yaml:"news_limit" default:"5" validate:"gte=1,lte=50"`
		Thresholds struct {
			ActiveVolumeRatio float64 `yaml:"active_volume_ratio" default:"1.5"`
			LowValuationPE    float64 `yaml:"low_valuation_pe" default:"20"`
			HighTurnoverRate  float64 `yaml:"high_turnover_rate" default:"5"`
			LowTurnoverRate   float64 `yaml:"low_turnover_rate" default:"1"`
			HealthyROE        float64 `yaml:"healthy_roe" default:"10"`
		} `yaml:"thresholds"`
	} `yaml:"analysis"`
	Cache struct {
		SnapshotTTL   time.Duration `yaml:"snapshot_ttl" default:"10m"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"64" validate:"gte=1"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"stockpulse"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string        `yaml:"topic" default:"stockpulse.reports"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file in the working directory is read first when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STOCKPULSE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("STOCKPULSE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STOCKPULSE_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("STOCKPULSE_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("STOCKPULSE_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("STOCKPULSE_KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("STOCKPULSE_KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	t := c.Analysis.Thresholds
	if t.LowTurnoverRate > t.HighTurnoverRate {
		return fmt.Errorf("analysis.thresholds: low_turnover_rate %.2f exceeds high_turnover_rate %.2f", t.LowTurnoverRate, t.HighTurnoverRate)
	}
	if c.Fetch.MaxBackoff > 0 && c.Fetch.Backoff > c.Fetch.MaxBackoff {
		return fmt.Errorf("fetch.backoff %s exceeds fetch.max_backoff %s", c.Fetch.Backoff, c.Fetch.MaxBackoff)
	}
	return nil
}
