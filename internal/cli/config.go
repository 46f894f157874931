package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Cache backend names accepted in the config file and --cache flag.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

// Config is the on-disk configuration, read from
// ~/.config/inkpath/config.toml when present. Every field has a working
// default so a missing file is not an error.
type Config struct {
	Cache CacheConfig `toml:"cache"`
	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
	Serve ServeConfig `toml:"serve"`
}

type CacheConfig struct {
	Backend string `toml:"backend"` // file, redis, mongo, none
	Dir     string `toml:"dir"`     // file backend only; empty means XDG default
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{Backend: backendFile},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Mongo: MongoConfig{URI: "mongodb://localhost:27017", Database: appName, Collection: "artifacts"},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// configPath returns the config file location using XDG standard
// (~/.config/inkpath/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file, returning defaults when it does not
// exist. A malformed file is an error; silently ignoring it would hide
// typos behind default behavior.
func loadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return defaultConfig(), nil
	}
	return loadConfigFile(path)
}

func loadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func errUnknownBackend(name string) error {
	return fmt.Errorf("unknown cache backend: %s (must be 'file', 'redis', 'mongo', or 'none')", name)
}
