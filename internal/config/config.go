package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load loads the configuration following proper precedence: defaults → config file → environment variables
func Load() {
	configFile := os.Getenv("ESTATE_CONFIG_FILE")
	if configFile == "" {
		configFile = "estate.yaml"
	}
	LoadFile(configFile)
}

// LoadFile is Load with an explicit config file name, used by the --config flag.
// A missing or unreadable file falls back to defaults.
func LoadFile(configFile string) {
	LoadDefault()

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	}

	// Apply environment variable overrides (highest priority)
	ApplyEnvOverrides()
}

func LoadDefault() {
	config := defaultConfig
	_loaded = &config
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := defaultConfig

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	_loaded = &cfg
	return nil
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "console",
			File:   "estate.log",
		},
		Client: clientConfig{
			BackendURL: "http://localhost:8000",
			Schema:     "v3",
			Timeout:    0,
		},
		Http: httpConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Storage: storageConfig{
			Type:        "filesystem",
			Root:        "./tmp_data",
			Environment: "local-dev",
			Label:       "ExFAT",
		},
		Postgres: postgresConfig{
			User:               "postgres",
			Password:           "postgres",
			Host:               "localhost",
			Port:               5432,
			Database:           "estate",
			MaxOpenConnections: 10,
		},
	},
}

type Common struct {
	Log      logConfig      `yaml:"log"`
	Client   clientConfig   `yaml:"client"`
	Http     httpConfig     `yaml:"http"`
	Storage  storageConfig  `yaml:"storage"`
	Postgres postgresConfig `yaml:"postgres"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
	File   string `yaml:"file"`   // interactive mode only; the terminal belongs to the UI
}

type clientConfig struct {
	BackendURL string        `yaml:"backend_url"`
	Schema     string        `yaml:"schema"`  // "v1" or "v3"
	Timeout    time.Duration `yaml:"timeout"` // 0 means no timeout
}

type httpConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type storageConfig struct {
	Type        string `yaml:"type"` // "filesystem" or "postgres"
	Root        string `yaml:"root"`
	Environment string `yaml:"environment"`
	Label       string `yaml:"label"`
}

type postgresConfig struct {
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Database           string `yaml:"database"`
	MaxOpenConnections int    `yaml:"max_open_connections"`
}

func (c postgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
	)
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func Client() clientConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Client
}

func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

func Storage() storageConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Storage
}

func Postgres() postgresConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Postgres
}

func Get() *Config {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded
}

// SetClient replaces the client section; command line flags win over file and env.
func SetClient(c clientConfig) {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	_loaded.Common.Client = c
}

// SetLogLevel overrides the configured log level.
func SetLogLevel(level string) {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	_loaded.Common.Log.Level = level
}

func ApplyEnvOverrides() {
	if _loaded == nil {
		return
	}

	if level := os.Getenv("ESTATE_LOG_LEVEL"); level != "" {
		_loaded.Common.Log.Level = level
	}
	if format := os.Getenv("ESTATE_LOG_FORMAT"); format != "" {
		_loaded.Common.Log.Format = format
	}

	if backendURL := os.Getenv("ESTATE_BACKEND_URL"); backendURL != "" {
		_loaded.Common.Client.BackendURL = backendURL
	}
	if schema := os.Getenv("ESTATE_SCHEMA"); schema != "" {
		_loaded.Common.Client.Schema = schema
	}
	if timeout := os.Getenv("ESTATE_CLIENT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			_loaded.Common.Client.Timeout = d
		}
	}

	if httpHost := os.Getenv("ESTATE_HTTP_HOST"); httpHost != "" {
		_loaded.Common.Http.Host = httpHost
	}
	if httpPort := os.Getenv("ESTATE_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			_loaded.Common.Http.Port = port
		}
	}

	// SSD_MOUNT_PATH matches the docker volume mapping used by the backend image
	if mount := os.Getenv("SSD_MOUNT_PATH"); mount != "" {
		_loaded.Common.Storage.Root = mount
	}
	if storeType := os.Getenv("ESTATE_STORE"); storeType != "" {
		_loaded.Common.Storage.Type = storeType
	}

	if dbHost := os.Getenv("ESTATE_DB_HOST"); dbHost != "" {
		_loaded.Common.Postgres.Host = dbHost
	}
	if dbPort := os.Getenv("ESTATE_DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			_loaded.Common.Postgres.Port = port
		}
	}
	if dbUser := os.Getenv("ESTATE_DB_USER"); dbUser != "" {
		_loaded.Common.Postgres.User = dbUser
	}
	if dbPassword := os.Getenv("ESTATE_DB_PASSWORD"); dbPassword != "" {
		_loaded.Common.Postgres.Password = dbPassword
	}
	if dbName := os.Getenv("ESTATE_DB_NAME"); dbName != "" {
		_loaded.Common.Postgres.Database = dbName
	}
}
