// Package config_test contains the unit tests for the config package.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Load(t *testing.T) {
	// Create a temporary directory for our test config files
	tempDir := t.TempDir()

	// --- Test Case 1: Valid TOML configuration file ---
	validToml := `
host = "127.0.0.1"
port = 9000
db_file = "/var/lib/mdb/fdb.json"
read_timeout = "5s"
metrics_addr = ":9100"
`
	validPath := filepath.Join(tempDir, "valid.toml")
	if err := os.WriteFile(validPath, []byte(validToml), 0644); err != nil {
		t.Fatalf("failed to write valid config file: %v", err)
	}

	cfg := New()
	if err := cfg.Load(validPath); err != nil {
		t.Fatalf("expected no error loading valid config, but got: %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("expected host to be '127.0.0.1', but got '%s'", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("expected port to be 9000, but got %d", cfg.Port)
	}
	if cfg.DBFile != "/var/lib/mdb/fdb.json" {
		t.Errorf("db_file was not parsed correctly, got '%s'", cfg.DBFile)
	}
	if time.Duration(cfg.ReadTimeout) != 5*time.Second {
		t.Errorf("expected read_timeout 5s, got %v", time.Duration(cfg.ReadTimeout))
	}
	if cfg.ReadBuffer != 1024 {
		t.Errorf("expected default read_buffer to survive, got %d", cfg.ReadBuffer)
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("unexpected addr '%s'", cfg.Addr())
	}

	// --- Test Case 2: File does not exist ---
	cfg2 := New()
	if err := cfg2.Load(filepath.Join(tempDir, "nonexistent.toml")); err == nil {
		t.Fatal("expected an error for non-existent file, but got none")
	}

	// --- Test Case 3: Invalid TOML format ---
	invalidToml := `host = 127.0.0.1` // Invalid: host should be a string
	invalidPath := filepath.Join(tempDir, "invalid.toml")
	if err := os.WriteFile(invalidPath, []byte(invalidToml), 0644); err != nil {
		t.Fatalf("failed to write invalid config file: %v", err)
	}

	cfg3 := New()
	if err := cfg3.Load(invalidPath); err == nil {
		t.Fatal("expected an error for invalid TOML, but got none")
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	tempDir := t.TempDir()

	validYaml := `
host: 0.0.0.0
port: 7000
log_level: debug
read_timeout: 250ms
`
	path := filepath.Join(tempDir, "mdb.yaml")
	if err := os.WriteFile(path, []byte(validYaml), 0644); err != nil {
		t.Fatalf("failed to write yaml config: %v", err)
	}

	cfg := New()
	if err := cfg.Load(path); err != nil {
		t.Fatalf("expected no error loading yaml config, got: %v", err)
	}
	if cfg.Host != "0.0.0.0" || cfg.Port != 7000 || cfg.LogLevel != "debug" {
		t.Errorf("yaml values were not applied: %+v", cfg)
	}
	if time.Duration(cfg.ReadTimeout) != 250*time.Millisecond {
		t.Errorf("expected read_timeout 250ms, got %v", time.Duration(cfg.ReadTimeout))
	}
	if cfg.DBFile != "fdb.json" {
		t.Errorf("expected default db_file, got '%s'", cfg.DBFile)
	}

	badPath := filepath.Join(tempDir, "bad.yml")
	if err := os.WriteFile(badPath, []byte("port: [1, 2"), 0644); err != nil {
		t.Fatalf("failed to write yaml config: %v", err)
	}
	if err := New().Load(badPath); err == nil {
		t.Fatal("expected an error for invalid YAML, but got none")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Fatalf("defaults should be valid, got: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"empty db file", func(c *Config) { c.DBFile = "" }},
		{"zero buffer", func(c *Config) { c.ReadBuffer = 0 }},
		{"negative timeout", func(c *Config) { c.ReadTimeout = Duration(-time.Second) }},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
