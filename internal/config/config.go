package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvPath     = "SPOTSCAPE_CONFIG"
	DefaultPath = "configs/config.yaml"

	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	HTTP struct {
		Host                     string  `yaml:"host"`
		Port                     string  `yaml:"port"`
		ReadHeaderTimeoutSeconds int     `yaml:"read_header_timeout_seconds"`
		ShutdownTimeoutSeconds   int     `yaml:"shutdown_timeout_seconds"`
		LivenessEndpoint         string  `yaml:"liveness_endpoint"`
		RateLimitPerSecond       float64 `yaml:"rate_limit_per_second"`
		RateLimitBurst           int     `yaml:"rate_limit_burst"`
	} `yaml:"http"`

	Storage struct {
		Driver string `yaml:"driver"`
		Key    string `yaml:"key"`
		Dir    string `yaml:"dir"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Redis struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Payment struct {
		DelayMillis int     `yaml:"delay_millis"`
		SuccessRate float64 `yaml:"success_rate"`
		Currency    string  `yaml:"currency"`
	} `yaml:"payment"`

	Tracing struct {
		Exporter    string `yaml:"exporter"`
		Endpoint    string `yaml:"endpoint"`
		ServiceName string `yaml:"service_name"`
	} `yaml:"tracing"`

	Monitoring struct {
		PrometheusEnabled bool   `yaml:"prometheus_enabled"`
		MetricsEndpoint   string `yaml:"metrics_endpoint"`
	} `yaml:"monitoring"`
}

// Load reads .env (if present) and the YAML file at path. A missing file is
// not an error: the defaults describe a working in-memory setup.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvPath)
	}

	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))

		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.HTTP.Host == "" {
		c.HTTP.Host = "localhost"
	}

	if c.HTTP.Port == "" {
		c.HTTP.Port = "8092"
	}

	if c.HTTP.ReadHeaderTimeoutSeconds <= 0 {
		c.HTTP.ReadHeaderTimeoutSeconds = 20
	}

	if c.HTTP.ShutdownTimeoutSeconds <= 0 {
		c.HTTP.ShutdownTimeoutSeconds = 4
	}

	if c.HTTP.LivenessEndpoint == "" {
		c.HTTP.LivenessEndpoint = "/liveness"
	}

	if c.HTTP.RateLimitPerSecond <= 0 {
		c.HTTP.RateLimitPerSecond = 5
	}

	if c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = 10
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}

	if c.Storage.Key == "" {
		c.Storage.Key = "parkingBookings"
	}

	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}

	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "data/spotscape.db"
	}

	if c.Storage.Redis.Address == "" {
		c.Storage.Redis.Address = "localhost:6379"
	}

	if c.Payment.DelayMillis < 0 {
		c.Payment.DelayMillis = 0
	} else if c.Payment.DelayMillis == 0 {
		c.Payment.DelayMillis = 2000
	}

	if c.Payment.SuccessRate <= 0 || c.Payment.SuccessRate > 1 {
		c.Payment.SuccessRate = 0.95
	}

	if c.Payment.Currency == "" {
		c.Payment.Currency = "INR"
	}

	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "none"
	}

	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4317"
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "spotscape"
	}

	if c.Monitoring.MetricsEndpoint == "" {
		c.Monitoring.MetricsEndpoint = "/metrics"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverRedis:
		return nil
	default:
		return fmt.Errorf("storage.driver %q: %w", c.Storage.Driver, ErrUnknownDriver)
	}
}

func (c *Config) PaymentDelay() time.Duration {
	return time.Duration(c.Payment.DelayMillis) * time.Millisecond
}

func (c *Config) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.HTTP.ReadHeaderTimeoutSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.HTTP.ShutdownTimeoutSeconds) * time.Second
}
