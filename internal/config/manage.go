package config

import (
	"fmt"
	"time"
)

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

// ShowAll returns all config key/value pairs from the current config.
func ShowAll(cfg Config) []KeyInfo {
	result := make([]KeyInfo, 0, len(specs))
	for _, s := range specs {
		result = append(result, KeyInfo{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprintf("%v", s.extract(cfg)),
		})
	}
	return result
}

// SetKey validates value for key and writes it to the config file.
func SetKey(key, value string) error {
	return setKeyWith(newFileBackend(ConfigFilePath()), key, value)
}

// UnsetKey removes key from the config file so its default applies again.
func UnsetKey(key string) error {
	if _, ok := lookupSpec(key); !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}
	return newFileBackend(ConfigFilePath()).Delete(key)
}

func setKeyWith(b ConfigBackend, key, value string) error {
	s, ok := lookupSpec(key)
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}
	v, err := s.parse(value)
	if err != nil {
		return err
	}

	// Reject values that would make the next Load fail.
	cfg := defaults()
	s.apply(&cfg, v)
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch s.typ {
	case kInt:
		return b.SetInt(key, v.(int))
	case kDuration:
		return b.SetString(key, v.(time.Duration).String())
	default:
		return b.SetString(key, value)
	}
}

// ValidKeys returns the list of config key names.
func ValidKeys() []string {
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		keys = append(keys, s.key)
	}
	return keys
}
