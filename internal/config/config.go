package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultEndpoint     = "http://localhost:8000"
	DefaultLinkOrigin   = "https://en.wikipedia.org"
	defaultDebounce     = 300 * time.Millisecond
	defaultSuggestLimit = 5
	defaultTimeout      = 10 * time.Second
	defaultRateLimit    = 10
	defaultRateBurst    = 5
	defaultCacheSize    = 256
	defaultCacheTTL     = 5 * time.Minute
)

type Config struct {
	Endpoint     string   `toml:"endpoint"`
	LinkOrigin   string   `toml:"link_origin"`
	Debounce     Duration `toml:"debounce"`
	SuggestLimit int      `toml:"suggest_limit"`
	Timeout      Duration `toml:"timeout"`
	RateLimit    float64  `toml:"rate_limit"`
	RateBurst    int      `toml:"rate_burst"`
	CacheSize    int      `toml:"cache_size"`
	CacheTTL     Duration `toml:"cache_ttl"`
	LogFile      string   `toml:"log_file"`
	Debug        bool     `toml:"debug"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wikisearch"), nil
}

func Path() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wfind.log"), nil
}

func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.LinkOrigin == "" {
		c.LinkOrigin = DefaultLinkOrigin
	}
	if c.Debounce.Duration <= 0 {
		c.Debounce = Duration{defaultDebounce}
	}
	if c.SuggestLimit <= 0 {
		c.SuggestLimit = defaultSuggestLimit
	}
	if c.Timeout.Duration <= 0 {
		c.Timeout = Duration{defaultTimeout}
	}
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = defaultRateBurst
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	if c.CacheTTL.Duration <= 0 {
		c.CacheTTL = Duration{defaultCacheTTL}
	}
}

// Validate checks that the endpoint and link origin are absolute http(s) URLs.
func (c *Config) Validate() error {
	if err := checkURL("endpoint", c.Endpoint); err != nil {
		return err
	}
	return checkURL("link_origin", c.LinkOrigin)
}

func checkURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, raw)
	}
	if u.Host == "" {
		return errors.New(field + " must include a host")
	}
	return nil
}

func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
