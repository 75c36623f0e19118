// Package config loads devhost settings with viper.
//
// Sources, later ones winning:
//
//	built-in defaults  (SetDefaults)
//	TOML config file   (--config, else $HOME/.config/devhost/config.toml)
//	environment        (DEVHOST_ prefix, dots become underscores:
//	                    DEVHOST_SERVER_PORT, DEVHOST_STORAGE_BACKEND, ...)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "DEVHOST"

// Storage backends accepted by storage.backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Store     StoreConfig     `mapstructure:"store"`
	Structure StructureConfig `mapstructure:"structure"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StorageConfig struct {
	Backend    string         `mapstructure:"backend"`
	Dir        string         `mapstructure:"dir"`
	SQLitePath string         `mapstructure:"sqlite_path"`
	Slot       string         `mapstructure:"slot"`
	DynamoDB   DynamoDBConfig `mapstructure:"dynamodb"`
}

type DynamoDBConfig struct {
	Table    string `mapstructure:"table"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type StoreConfig struct {
	SimulatedLatencyMS int  `mapstructure:"simulated_latency_ms"`
	FailOnCorrupt      bool `mapstructure:"fail_on_corrupt"`
}

type StructureConfig struct {
	File string `mapstructure:"file"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SimulatedLatency is store.simulated_latency_ms as a duration.
func (c Config) SimulatedLatency() time.Duration {
	return time.Duration(c.Store.SimulatedLatencyMS) * time.Millisecond
}

// SlogLevel maps log.level to a slog level. Unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.sqlite_path", "data/devhost.db")
	v.SetDefault("storage.slot", "devhost_snippets")
	v.SetDefault("storage.dynamodb.table", "devhost_slots")
	v.SetDefault("storage.dynamodb.region", "us-east-1")
	v.SetDefault("storage.dynamodb.endpoint", "")
	v.SetDefault("store.simulated_latency_ms", 300)
	v.SetDefault("store.fail_on_corrupt", false)
	v.SetDefault("structure.file", "")
	v.SetDefault("metrics.enabled", true)
}

// New returns a viper instance with defaults and environment binding set up,
// and the config file location configured. Nothing is read yet.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: locating home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "devhost"))
		v.SetConfigType("toml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// Load reads the config file (a missing default file is not an error, a
// missing explicit one is) and decodes everything into a Config.
func Load(cfgFile string) (Config, error) {
	v, err := New(cfgFile)
	if err != nil {
		return Config{}, err
	}
	return Read(v)
}

// Read reads v's config file and decodes v. Flags bound to v with BindPFlag
// take part in the result.
func Read(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if _, statErr := os.Stat(cfg.File); statErr != nil {
		cfg.File = ""
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendDynamoDB:
	default:
		return fmt.Errorf("config: unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Store.SimulatedLatencyMS < 0 {
		return fmt.Errorf("config: store.simulated_latency_ms must not be negative")
	}
	if c.Storage.Slot == "" {
		return fmt.Errorf("config: storage.slot must not be empty")
	}
	return nil
}
