package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. HEROMATCH_QUERY_DEFAULT_K.
const EnvPrefix = "HEROMATCH"

// FileName is the config file looked up when no explicit path is given.
const FileName = "heromatch.yaml"

type DatasetConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`
	DB     string `mapstructure:"db" yaml:"db"`
	Strict bool   `mapstructure:"strict" yaml:"strict"`
}

type ScalerConfig struct {
	Kind       string `mapstructure:"kind" yaml:"kind"`
	Degenerate string `mapstructure:"degenerate" yaml:"degenerate"`
}

type IndexConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind"`
}

type QueryConfig struct {
	DefaultK    int  `mapstructure:"default_k" yaml:"default_k"`
	MaxK        int  `mapstructure:"max_k" yaml:"max_k"`
	StrictRange bool `mapstructure:"strict_range" yaml:"strict_range"`
}

type CacheConfig struct {
	Size int `mapstructure:"size" yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`
	Scaler  ScalerConfig  `mapstructure:"scaler" yaml:"scaler"`
	Index   IndexConfig   `mapstructure:"index" yaml:"index"`
	Query   QueryConfig   `mapstructure:"query" yaml:"query"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{Path: "heroes.csv", Strict: true},
		Scaler:  ScalerConfig{Kind: "standard", Degenerate: "identity"},
		Index:   IndexConfig{Kind: "auto"},
		Query:   QueryConfig{DefaultK: 5},
		Cache:   CacheConfig{Size: 1024},
		Metrics: MetricsConfig{Addr: ":9090"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("dataset.path", d.Dataset.Path)
	v.SetDefault("dataset.db", d.Dataset.DB)
	v.SetDefault("dataset.strict", d.Dataset.Strict)
	v.SetDefault("scaler.kind", d.Scaler.Kind)
	v.SetDefault("scaler.degenerate", d.Scaler.Degenerate)
	v.SetDefault("index.kind", d.Index.Kind)
	v.SetDefault("query.default_k", d.Query.DefaultK)
	v.SetDefault("query.max_k", d.Query.MaxK)
	v.SetDefault("query.strict_range", d.Query.StrictRange)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// New returns a viper instance with defaults and environment overrides set
// up. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configPath, or heromatch.yaml from the working directory when
// configPath is empty, and unmarshals the merged settings. A missing default
// file is not an error; a missing explicit file is.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks numeric settings.
func (c *Config) Validate() error {
	if c.Query.DefaultK < 1 {
		return fmt.Errorf("config: query.default_k must be >= 1, got %d", c.Query.DefaultK)
	}
	if c.Query.MaxK < 0 {
		return fmt.Errorf("config: query.max_k must be >= 0, got %d", c.Query.MaxK)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("config: cache.size must be >= 0, got %d", c.Cache.Size)
	}
	return nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
