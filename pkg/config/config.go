// Package config loads the bentogrid configuration file.
//
// The file is TOML, found at $XDG_CONFIG_HOME/bentogrid/config.toml (or
// ~/.config/bentogrid/config.toml) unless a path is given. Every key is
// optional; missing keys keep their defaults.
//
//	[grid]
//	columns = 8
//	margin = 16
//	mobile_margin = 12
//	hysteresis = 0.3
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "10m"
//
//	[server]
//	addr = ":8080"
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// AppName names the configuration, cache and data directories.
const AppName = "bentogrid"

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	Grid   GridConfig   `toml:"grid"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Site   SiteConfig   `toml:"site"`
}

// GridConfig holds the grid constants.
type GridConfig struct {
	Columns      int     `toml:"columns"`
	Margin       float64 `toml:"margin"`
	MobileMargin float64 `toml:"mobile_margin"`
	Hysteresis   float64 `toml:"hysteresis"`
}

// StoreConfig selects and configures the page store.
type StoreConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir,omitempty"`
	MongoURI      string        `toml:"mongo_uri,omitempty"`
	MongoDatabase string        `toml:"mongo_database,omitempty"`
	Timeout       time.Duration `toml:"timeout"`
}

// CacheConfig selects and configures the page cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir,omitempty"`
	RedisAddr     string        `toml:"redis_addr,omitempty"`
	RedisPassword string        `toml:"redis_password,omitempty"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix,omitempty"`
	TTL           time.Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// SiteConfig holds per-user defaults for the CLI.
type SiteConfig struct {
	BaseURL string `toml:"base_url"`
	Handle  string `toml:"handle,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	m := drag.DefaultMetrics()
	return &Config{
		Grid: GridConfig{
			Columns:      grid.DefaultColumns,
			Margin:       m.Margin,
			MobileMargin: m.MobileMargin,
			Hysteresis:   m.Hysteresis,
		},
		Store: StoreConfig{
			Backend: StoreFile,
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     10 * time.Minute,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Site: SiteConfig{
			BaseURL: document.DefaultBaseURL,
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// DefaultPath returns the configuration file path using the XDG standard.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the configuration at path on top of the defaults and validates
// it. An empty path means DefaultPath, which may be missing; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks value ranges and backend requirements.
func (c *Config) Validate() error {
	g := c.Grid
	if g.Columns < 2 || g.Columns%2 != 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid.columns must be an even number >= 2, got %d", g.Columns)
	}
	if g.Margin < 0 || g.MobileMargin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid margins must not be negative")
	}
	if g.Hysteresis < 0 || g.Hysteresis >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid.hysteresis must be in [0, 1), got %g", g.Hysteresis)
	}

	switch c.Store.Backend {
	case StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid store.backend: %q (must be one of: file, mongo)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache.backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	if c.Site.Handle != "" {
		if err := errors.ValidateHandle(c.Site.Handle); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "site.handle")
		}
	}
	return nil
}

// =============================================================================
// Accessors
// =============================================================================

// Metrics returns the drag metrics.
func (c *Config) Metrics() drag.Metrics {
	return drag.Metrics{
		Margin:       c.Grid.Margin,
		MobileMargin: c.Grid.MobileMargin,
		Hysteresis:   c.Grid.Hysteresis,
	}
}

// Apply pushes process-wide settings into the layout engine. Call it once at
// start-up, before any layout work.
func (c *Config) Apply() {
	grid.SetColumns(c.Grid.Columns)
}
