package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kDuration
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "services.advisor_url", typ: kString, env: "PATHWISE_SERVICES_ADVISOR_URL",
		apply:   func(cfg *Config, v any) { cfg.Services.AdvisorURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Services.AdvisorURL },
	},
	{
		key: "services.backend_url", typ: kString, env: "PATHWISE_SERVICES_BACKEND_URL",
		apply:   func(cfg *Config, v any) { cfg.Services.BackendURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Services.BackendURL },
	},
	{
		key: "services.timeout", typ: kDuration, env: "PATHWISE_SERVICES_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Services.Timeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Services.Timeout },
	},
	{
		key: "storage.data_dir", typ: kString, env: "PATHWISE_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "server.port", typ: kInt, env: "PATHWISE_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "log.level", typ: kString, env: "PATHWISE_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "log.format", typ: kString, env: "PATHWISE_LOG_FORMAT",
		apply:   func(cfg *Config, v any) { cfg.Log.Format = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Format },
	},
	{
		key: "breaker.max_failures", typ: kInt, env: "PATHWISE_BREAKER_MAX_FAILURES",
		apply:   func(cfg *Config, v any) { cfg.Breaker.MaxFailures = v.(int) },
		extract: func(cfg Config) any { return cfg.Breaker.MaxFailures },
	},
	{
		key: "breaker.open_timeout", typ: kDuration, env: "PATHWISE_BREAKER_OPEN_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Breaker.OpenTimeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Breaker.OpenTimeout },
	},
	{
		key: "forecast.cache_size", typ: kInt, env: "PATHWISE_FORECAST_CACHE_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Forecast.CacheSize = v.(int) },
		extract: func(cfg Config) any { return cfg.Forecast.CacheSize },
	},
	{
		key: "forecast.cache_ttl", typ: kDuration, env: "PATHWISE_FORECAST_CACHE_TTL",
		apply:   func(cfg *Config, v any) { cfg.Forecast.CacheTTL = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Forecast.CacheTTL },
	},
}

func lookupSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}

// parse converts raw text to the spec's type.
func (s keySpec) parse(raw string) (any, error) {
	switch s.typ {
	case kInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer for %s: %w", s.key, err)
		}
		return i, nil
	case kDuration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", s.key, err)
		}
		return d, nil
	default:
		return raw, nil
	}
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		default:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if !ok || v == "" {
				continue
			}
			parsed, err := s.parse(v)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] %v. Using default value.\n", err)
				continue
			}
			s.apply(cfg, parsed)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}
