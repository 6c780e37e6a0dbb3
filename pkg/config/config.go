// Package config loads palpiteiro's runtime configuration.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults
//  2. a TOML file (default $XDG_CONFIG_HOME/palpiteiro/config.toml)
//  3. a .env file in the working directory (never overriding real env vars)
//  4. PALPITEIRO_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/palpiteiro/palpiteiro/pkg/assets"
	"github.com/palpiteiro/palpiteiro/pkg/cache"
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
)

const appName = "palpiteiro"

// Config holds runtime configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Assets  AssetsConfig  `toml:"assets"`
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
}

// APIConfig controls how we talk to the lineup service.
type APIConfig struct {
	URL     string        `toml:"url"`
	Key     string        `toml:"key"`
	Timeout time.Duration `toml:"timeout"`
}

// AssetsConfig controls photo and emblem downloads.
type AssetsConfig struct {
	Concurrency   int           `toml:"concurrency"`
	Timeout       time.Duration `toml:"timeout"`
	Retries       int           `toml:"retries"`
	RPS           float64       `toml:"rps"`
	FailurePolicy string        `toml:"failure_policy"`
}

// RenderConfig holds layout and canvas settings.
type RenderConfig struct {
	Positions  string `toml:"positions"`  // JSON position map; empty uses the built-in one
	Background string `toml:"background"` // image file; empty draws a pitch
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Captain    string `toml:"captain"` // empty uses the game mode's default
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StorageConfig configures the render history store. An empty MongoURI
// keeps the newest MemoryRenders renders in memory.
type StorageConfig struct {
	MongoURI      string `toml:"mongo_uri"`
	MongoDB       string `toml:"mongo_db"`
	MemoryRenders int    `toml:"memory_renders"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{Timeout: defaultAPITimeout},
		Assets: AssetsConfig{
			Concurrency:   defaultConcurrency,
			Timeout:       defaultAssetTimeout,
			Retries:       defaultAssetRetries,
			FailurePolicy: defaultFailurePolicy,
		},
		Cache: CacheConfig{
			Backend:   defaultCacheBackend,
			Dir:       defaultCacheDir(),
			RedisAddr: defaultRedisAddr,
		},
		Storage: StorageConfig{MongoDB: defaultMongoDB, MemoryRenders: defaultMemoryRenders},
		Server:  ServerConfig{Listen: defaultListen},
	}
}

// Load builds the configuration from path (or the default location when
// path is empty), .env and the environment, then validates it. A missing
// default file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, errors.Wrap(errors.ErrCodeConfig, err, "parse config %s", path)
			}
		} else if explicit {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "read config")
		}
	}

	_ = godotenv.Load(".env")
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.API.URL = envOrDefault(envAPIURL, c.API.URL)
	c.API.Key = envOrDefault(envAPIKey, c.API.Key)

	c.Render.Positions = envOrDefault(envPositions, c.Render.Positions)
	c.Render.Background = envOrDefault(envBackground, c.Render.Background)

	c.Assets.Concurrency = intEnvOrDefault(envConcurrency, c.Assets.Concurrency)
	c.Assets.Timeout = durationEnvOrDefault(envAssetTimeout, c.Assets.Timeout)
	c.Assets.Retries = intEnvOrDefault(envAssetRetries, c.Assets.Retries)
	c.Assets.RPS = floatEnvOrDefault(envAssetRPS, c.Assets.RPS)
	c.Assets.FailurePolicy = envOrDefault(envFailurePolicy, c.Assets.FailurePolicy)

	c.Cache.Backend = envOrDefault(envCache, c.Cache.Backend)
	c.Cache.Dir = envOrDefault(envCacheDir, c.Cache.Dir)
	c.Cache.RedisAddr = envOrDefault(envRedisAddr, c.Cache.RedisAddr)
	c.Cache.RedisPassword = envOrDefault(envRedisPassword, c.Cache.RedisPassword)
	c.Cache.RedisDB = intEnvOrDefault(envRedisDB, c.Cache.RedisDB)

	c.Storage.MongoURI = envOrDefault(envMongoURI, c.Storage.MongoURI)
	c.Storage.MongoDB = envOrDefault(envMongoDB, c.Storage.MongoDB)
	c.Storage.MemoryRenders = intEnvOrDefault(envMemoryRenders, c.Storage.MemoryRenders)

	c.Server.Listen = envOrDefault(envListen, c.Server.Listen)
}

// Validate reports the first invalid setting as an INVALID_INPUT error.
func (c *Config) Validate() error {
	if c.API.URL != "" {
		u, err := url.Parse(c.API.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New(errors.ErrCodeInvalidInput, "api url must be an absolute http(s) url, got %q", c.API.URL)
		}
	}
	if c.API.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "api timeout must be positive")
	}
	if c.Assets.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "asset concurrency must be at least 1, got %d", c.Assets.Concurrency)
	}
	if c.Assets.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "asset timeout must be positive")
	}
	if c.Assets.Retries < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "asset retries must be non-negative, got %d", c.Assets.Retries)
	}
	if c.Assets.RPS < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "asset rps must be non-negative, got %g", c.Assets.RPS)
	}
	if _, err := assets.ParseFailurePolicy(c.Assets.FailurePolicy); err != nil {
		return err
	}
	if c.Render.Captain != "" {
		if _, err := formation.ParseCaptainPolicy(c.Render.Captain); err != nil {
			return err
		}
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid canvas size %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Storage.MemoryRenders < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "memory_renders must be at least 1, got %d", c.Storage.MemoryRenders)
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	return nil
}

// CacheOptions returns the options for [cache.Open].
func (c *Config) CacheOptions() cache.OpenOptions {
	return cache.OpenOptions{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
	}
}

// PositionMap loads the configured position map, or the built-in one.
func (c *Config) PositionMap() (*formation.PositionMap, error) {
	if c.Render.Positions == "" {
		return formation.DefaultPositionMap(), nil
	}
	return formation.LoadPositionMapFile(c.Render.Positions)
}

// DefaultPath returns $XDG_CONFIG_HOME/palpiteiro/config.toml, or "" when
// no home directory is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// defaultCacheDir returns the cache directory using XDG standard (~/.cache/palpiteiro/).
func defaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}
