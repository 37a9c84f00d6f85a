package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// LocalConfigFile is picked up from the working directory when neither
// --config nor CONFIG_PATH names a file.
const LocalConfigFile = "hdbdash.yaml"

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

var drivers = []string{DriverFile, DriverSQLite, DriverRedis, DriverMemory}

// Config is the dashboard configuration. Values come from, in order of
// precedence, an explicit file, CONFIG_PATH, ./hdbdash.yaml and finally
// the environment alone. Environment variables always override the file.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`

	Env       string `yaml:"env"        env:"ENV"        env-default:"prod"`
	LogLevel  string `yaml:"log_level"  env:"LOG_LEVEL"  env-default:"warn"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
}

type APIConfig struct {
	URL            string        `yaml:"url"             env:"HDB_API_URL"         env-default:"http://127.0.0.1:8000/api/"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HDB_REQUEST_TIMEOUT" env-default:"10s"`
	// RateLimit is requests per second towards the API. HDB_RATE_LIMIT=0
	// disables it.
	RateLimit int `yaml:"rate_limit" env:"HDB_RATE_LIMIT" env-default:"10"`
	RateBurst int `yaml:"rate_burst" env:"HDB_RATE_BURST" env-default:"20"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"HDB_STORAGE_DRIVER" env-default:"file"`
	// Path is the directory (file) or database file (sqlite). Empty means
	// a location under the user config directory.
	Path string `yaml:"path" env:"HDB_STORAGE_PATH"`

	// RedisURL (redis://[:password@]host:port/db) takes precedence over
	// the separate address fields.
	RedisURL      string `yaml:"redis_url"      env:"HDB_REDIS_URL"`
	RedisAddr     string `yaml:"redis_addr"     env:"HDB_REDIS_ADDR"     env-default:"127.0.0.1:6379"`
	RedisPassword string `yaml:"redis_password" env:"HDB_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"       env:"HDB_REDIS_DB"       env-default:"0"`
	RedisPrefix   string `yaml:"redis_prefix"   env:"HDB_REDIS_PREFIX"   env-default:"hdbdash:"`

	// Passphrase enables encryption of stored values.
	Passphrase string `yaml:"passphrase" env:"HDB_STORAGE_PASSPHRASE"`
}

// LoadConfig reads the configuration. path may be empty. The result is
// not validated so command-line overrides can still be applied.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	readFile := func(p string) (Config, error) {
		if _, err := os.Stat(p); err != nil {
			return Config{}, fmt.Errorf("config file %q: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config %q: %w", p, err)
		}
		return cfg, nil
	}

	if path != "" {
		return readFile(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}

	if _, err := os.Stat(LocalConfigFile); err == nil {
		return readFile(LocalConfigFile)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api url %q must be an absolute http(s) URL", c.API.URL))
	}
	if c.API.RequestTimeout < 0 {
		errs = append(errs, errors.New("request timeout must not be negative"))
	}
	if c.API.RateLimit < 0 || c.API.RateBurst < 0 {
		errs = append(errs, errors.New("rate limit and burst must not be negative"))
	}
	if !slices.Contains(drivers, c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("unknown storage driver %q (want one of %v)", c.Storage.Driver, drivers))
	}

	return errors.Join(errs...)
}

// StoragePath returns Storage.Path, or the default location for the
// configured driver.
func (c Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("no storage path configured: %w", err)
	}
	dir = filepath.Join(dir, "hdbdash")

	if c.Storage.Driver == DriverSQLite {
		return filepath.Join(dir, "session.db"), nil
	}
	return filepath.Join(dir, "session"), nil
}
