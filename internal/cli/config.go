package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stepgraph/pkg/cache"
	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/pipeline"
)

// configFileName is the file looked up in the config directory.
const configFileName = "config.toml"

// Config is the on-disk CLI configuration. Zero values mean "use the
// built-in default"; command-line flags override everything here.
//
//	[layout]
//	base_width = 200
//	base_height = 60
//	margin_x = 40
//	margin_y = 40
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds the box size and spacing used by layout.
type LayoutConfig struct {
	BaseWidth  float64 `toml:"base_width"`
	BaseHeight float64 `toml:"base_height"`
	MarginX    float64 `toml:"margin_x"`
	MarginY    float64 `toml:"margin_y"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	// Prefix namespaces every cache key, so several deployments can share
	// one Redis database or Mongo collection.
	Prefix string `toml:"prefix"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// LoadConfig reads the config file at path. An empty path selects the default
// location, where a missing file yields the zero Config. An explicitly named
// file must exist.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	l := c.Layout
	if l.BaseWidth < 0 || l.BaseHeight < 0 || l.MarginX < 0 || l.MarginY < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "layout sizes must not be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNone, cache.BackendRedis, cache.BackendMongo:
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown cache backend %q (valid: %v)", c.Cache.Backend, cache.Backends)
	}
	return nil
}

// CacheOptions converts the [cache] section to cache.Open options.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
}

// Keyer returns the cache keyer for the configured prefix, or nil for the
// default keyer.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, c.Cache.Prefix)
}

// apply copies the configured layout sizes into opts. Zero values are left
// for the pipeline defaults.
func (l LayoutConfig) apply(opts *pipeline.Options) {
	if l.BaseWidth > 0 {
		opts.BaseWidth = l.BaseWidth
	}
	if l.BaseHeight > 0 {
		opts.BaseHeight = l.BaseHeight
	}
	if l.MarginX > 0 {
		opts.MarginX = l.MarginX
	}
	if l.MarginY > 0 {
		opts.MarginY = l.MarginY
	}
}
