// Package config handles loading and parsing the application's configuration.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
// We use struct tags to explicitly map TOML and YAML keys to struct fields.
type Config struct {
	Host        string   `toml:"host" yaml:"host"`
	Port        int      `toml:"port" yaml:"port"`
	DBFile      string   `toml:"db_file" yaml:"db_file"`           // JSON file mirroring the store
	ReadBuffer  int      `toml:"read_buffer" yaml:"read_buffer"`   // Bytes read per request
	ReadTimeout Duration `toml:"read_timeout" yaml:"read_timeout"` // Zero means wait forever
	LogLevel    string   `toml:"log_level" yaml:"log_level"`
	MetricsAddr string   `toml:"metrics_addr" yaml:"metrics_addr"` // Empty disables the admin listener
}

// New returns a new Config with default values.
func New() *Config {
	return &Config{
		Host:       "localhost",
		Port:       8888,
		DBFile:     "fdb.json",
		ReadBuffer: 1024,
		LogLevel:   "info",
	}
}

// Load reads a configuration file from the given path and populates the Config struct.
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
func (c *Config) Load(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		return nil
	default:
		_, err := toml.DecodeFile(path, c)
		return err
	}
}

// Validate checks the values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBFile == "" {
		return fmt.Errorf("db_file is required")
	}
	if c.ReadBuffer <= 0 {
		return fmt.Errorf("read_buffer must be positive, got %d", c.ReadBuffer)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must not be negative")
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Duration is a time.Duration written as a string such as "5s" in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler, which both decoders honour.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
