package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigBackend abstracts where persisted settings live. Keys are dotted
// paths such as "services.advisor_url".
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}

// fileBackend stores settings as nested YAML, one mapping level per
// segment of the dotted key:
//
//	services:
//	  advisor_url: http://localhost:8000
type fileBackend struct {
	path string
	data map[string]any
}

func newFileBackend(path string) *fileBackend {
	b := &fileBackend{path: path, data: make(map[string]any)}
	b.load()
	return b
}

func (b *fileBackend) load() {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "[WARN] could not read config file %s: %v. Using default values.\n", b.path, err)
		}
		return
	}
	if err := yaml.Unmarshal(data, &b.data); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] could not parse config file %s: %v. Using default values.\n", b.path, err)
		b.data = make(map[string]any)
	}
	if b.data == nil {
		b.data = make(map[string]any)
	}
}

func (b *fileBackend) save() error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(b.data)
	if err != nil {
		return err
	}
	return os.WriteFile(b.path, data, 0o600)
}

func (b *fileBackend) lookup(key string) (any, bool) {
	parts := strings.Split(key, ".")
	node := b.data
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			return nil, false
		}
		node = next
	}
	v, ok := node[parts[len(parts)-1]]
	return v, ok
}

func (b *fileBackend) put(key string, val any) {
	parts := strings.Split(key, ".")
	node := b.data
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[p] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = val
}

func (b *fileBackend) GetString(key string) (string, bool, error) {
	v, ok := b.lookup(key)
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v), true, nil
	}
	return s, true, nil
}

func (b *fileBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.lookup(key)
	if !ok || v == nil {
		return 0, false, nil
	}
	switch val := v.(type) {
	case int:
		return val, true, nil
	case float64:
		if val < math.MinInt || val > math.MaxInt || val != math.Trunc(val) {
			return 0, true, fmt.Errorf("value %v for %s is not a valid integer or is out of range", val, key)
		}
		return int(val), true, nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return i, true, nil
	default:
		return 0, true, fmt.Errorf("invalid type for %s", key)
	}
}

func (b *fileBackend) SetString(key, val string) error {
	b.put(key, val)
	return b.save()
}

func (b *fileBackend) SetInt(key string, val int) error {
	b.put(key, val)
	return b.save()
}

func (b *fileBackend) Delete(key string) error {
	parts := strings.Split(key, ".")
	node := b.data
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			return nil
		}
		node = next
	}
	delete(node, parts[len(parts)-1])
	return b.save()
}
