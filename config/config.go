package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/derktes/ir-remote/ir"
)

type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Store       StoreConfig       `yaml:"store" toml:"store"`
	Transmitter TransmitterConfig `yaml:"transmitter" toml:"transmitter"`
	Sync        SyncConfig        `yaml:"sync" toml:"sync"`
	Collector   CollectorConfig   `yaml:"collector" toml:"collector"`
	Log         LogConfig         `yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

type StoreConfig struct {
	Backend  string `yaml:"backend" toml:"backend"`
	Path     string `yaml:"path" toml:"path"`
	SeedFile string `yaml:"seed_file" toml:"seed_file"`
}

type TransmitterConfig struct {
	Kind            string              `yaml:"kind" toml:"kind"`
	Port            string              `yaml:"port" toml:"port"`
	Baud            int                 `yaml:"baud" toml:"baud"`
	FrequencyRanges []ir.FrequencyRange `yaml:"frequency_ranges" toml:"frequency_ranges"`
}

type SyncConfig struct {
	URL      string `yaml:"url" toml:"url"`
	Interval string `yaml:"interval" toml:"interval"`
	Timeout  string `yaml:"timeout" toml:"timeout"`
}

type CollectorConfig struct {
	ID        string `yaml:"id" toml:"id"`
	Serial    string `yaml:"serial" toml:"serial"`
	Baud      int    `yaml:"baud" toml:"baud"`
	ServerURL string `yaml:"server_url" toml:"server_url"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads the YAML or TOML file at path, expanding environment
// variables. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		cfg.setDefaults()
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "sqlite"
	}
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case "dir":
			c.Store.Path = "./configs"
		default:
			c.Store.Path = "./ir-remote.db"
		}
	}
	if c.Transmitter.Kind == "" {
		c.Transmitter.Kind = "none"
	}
	if c.Transmitter.Baud == 0 {
		c.Transmitter.Baud = 9600
	}
	if c.Sync.Interval == "" {
		c.Sync.Interval = "5m"
	}
	if c.Sync.Timeout == "" {
		c.Sync.Timeout = "10s"
	}
	if c.Collector.Baud == 0 {
		c.Collector.Baud = 9600
	}
	if c.Collector.ServerURL == "" {
		c.Collector.ServerURL = "http://localhost:3000"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// SyncInterval parses sync.interval. Zero disables periodic sync.
func (c *Config) SyncInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Sync.Interval)
	if err != nil {
		return 0, fmt.Errorf("sync.interval: %w", err)
	}
	return d, nil
}

// SyncTimeout parses sync.timeout.
func (c *Config) SyncTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Sync.Timeout)
	if err != nil {
		return 0, fmt.Errorf("sync.timeout: %w", err)
	}
	return d, nil
}
