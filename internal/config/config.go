package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Services ServicesConfig
	Storage  StorageConfig
	Server   ServerConfig
	Log      LogConfig
	Breaker  BreakerConfig
	Forecast ForecastConfig
}

type ServicesConfig struct {
	AdvisorURL string        `key:"services.advisor_url" validate:"required,url"`
	BackendURL string        `key:"services.backend_url" validate:"required,url"`
	Timeout    time.Duration `key:"services.timeout" validate:"gt=0"`
}

type StorageConfig struct {
	DataDir string `key:"storage.data_dir" validate:"required"`
}

type ServerConfig struct {
	Port int `key:"server.port" validate:"min=1,max=65535"`
}

type LogConfig struct {
	Level  string `key:"log.level" validate:"oneof=debug info warn error"`
	Format string `key:"log.format" validate:"oneof=console json"`
}

type BreakerConfig struct {
	MaxFailures int           `key:"breaker.max_failures" validate:"min=1"`
	OpenTimeout time.Duration `key:"breaker.open_timeout" validate:"gt=0"`
}

type ForecastConfig struct {
	CacheSize int           `key:"forecast.cache_size" validate:"min=1"`
	CacheTTL  time.Duration `key:"forecast.cache_ttl" validate:"gt=0"`
}

func defaults() Config {
	return Config{
		Services: ServicesConfig{
			AdvisorURL: "http://localhost:8000",
			BackendURL: "http://localhost:8080/api",
			Timeout:    30 * time.Second,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Server: ServerConfig{
			Port: 4100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Breaker: BreakerConfig{
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
		Forecast: ForecastConfig{
			CacheSize: 16,
			CacheTTL:  10 * time.Minute,
		},
	}
}

// Load reads configuration from the YAML file at
// $XDG_CONFIG_HOME/pathwise/config.yaml, then applies PATHWISE_*
// environment overrides, then validates the result.
func Load() (Config, error) {
	return loadWith(newFileBackend(ConfigFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if k := f.Tag.Get("key"); k != "" {
			return k
		}
		return f.Name
	})
	return v
}

// Validate reports every invalid setting, named by its config key.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldMessage(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(e validator.FieldError) string {
	key := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "url":
		return fmt.Sprintf("%s must be an absolute URL, got %q", key, e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", key, e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", key, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", key, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s is invalid", key)
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "pathwise-data"
		}
	}
	return filepath.Join(dir, "pathwise")
}

// ConfigFilePath returns the YAML config location.
func ConfigFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "pathwise", "config.yaml")
}
