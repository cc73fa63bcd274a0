package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Config holds the CLI configuration
type Config struct {
	EwsURL          string  `json:"ews_url,omitempty"`
	AutodiscoverURL string  `json:"autodiscover_url,omitempty"`
	Domain          string  `json:"domain,omitempty"`
	Mailbox         string  `json:"mailbox,omitempty"`
	Username        string  `json:"username,omitempty"`
	InsecureTLS     bool    `json:"insecure_tls,omitempty"`
	RateLimit       float64 `json:"rate_limit,omitempty"`
	DefaultOutput   string  `json:"default_output,omitempty"`
}

// Load reads config from XDG path, returns defaults if file doesn't exist
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to the XDG config path
func (c *Config) Save() error {
	path := ConfigPath()

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to JSON (not JSON5 for writing - JSON is valid JSON5)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Get retrieves a config value by key name
func (c *Config) Get(key string) (string, error) {
	f, err := c.field(key)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%v", f.Interface()), nil
}

// Set sets a config value by key name and saves
func (c *Config) Set(key, value string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}

	switch f.Kind() {
	case reflect.String:
		f.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config key %s wants true or false, got %q", key, value)
		}
		f.SetBool(b)
	case reflect.Float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("config key %s wants a number, got %q", key, value)
		}
		f.SetFloat(n)
	default:
		return fmt.Errorf("config key %s has unsupported type %s", key, f.Kind())
	}

	return c.Save()
}

// Unset sets a config value to its zero value and saves
func (c *Config) Unset(key string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}

	f.Set(reflect.Zero(f.Type()))

	return c.Save()
}

// Keys returns every settable config key in declaration order
func Keys() []string {
	t := reflect.TypeOf(Config{})

	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		keys = append(keys, keyName(t.Field(i)))
	}

	return keys
}

func (c *Config) field(key string) (reflect.Value, error) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		if keyName(t.Field(i)) == key {
			return v.Field(i), nil
		}
	}

	return reflect.Value{}, fmt.Errorf("unknown config key: %s", key)
}

func keyName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	for j := 0; j < len(tag); j++ {
		if tag[j] == ',' {
			return tag[:j]
		}
	}
	return tag
}
