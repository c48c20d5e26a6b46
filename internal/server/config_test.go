package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	t.Setenv(constants.APIKeyEnv, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Fatalf("expected default max body size, got %d", cfg.BodySizeBytes())
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
	if cfg.Provider.Enabled() {
		t.Fatal("expected provider disabled without an API key")
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Provider.BaseURL != constants.DefaultProviderBaseURL {
		t.Fatalf("expected default provider base URL, got %s", cfg.Provider.BaseURL)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxBodySize: 2M
allowedOrigins:
  - http://localhost:3000
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
bounds:
  minDiscountRate: 0.01
  maxProjectionYears: 40
provider:
  apiKey: demo
  timeout: 5s
  cacheTTL: 12h
  cachePath: /var/lib/dcf/financials.db
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max body override, got %d", cfg.BodySizeBytes())
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("expected origin override, got %v", cfg.AllowedOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
	if cfg.Bounds.MinDiscountRate == nil || *cfg.Bounds.MinDiscountRate != 0.01 {
		t.Fatalf("expected min discount rate 0.01, got %v", cfg.Bounds.MinDiscountRate)
	}
	if cfg.Bounds.MaxProjectionYears != 40 {
		t.Fatalf("expected max projection years 40, got %d", cfg.Bounds.MaxProjectionYears)
	}
	if cfg.Provider.APIKey != "demo" || !cfg.Provider.Enabled() {
		t.Fatalf("expected provider api key demo, got %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.Timeout != 5*time.Second {
		t.Fatalf("expected provider timeout 5s, got %v", cfg.Provider.Timeout)
	}
	if cfg.Provider.CacheTTL != 12*time.Hour {
		t.Fatalf("expected cache TTL 12h, got %v", cfg.Provider.CacheTTL)
	}
	if cfg.Provider.CachePath != "/var/lib/dcf/financials.db" {
		t.Fatalf("expected cache path override, got %s", cfg.Provider.CachePath)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"size":      "maxBodySize: invalid",
		"log level": "logging:\n  level: loud\n",
		"yaml":      "address: [",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestSetBodySizeBytes(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	cfg.SetBodySizeBytes(0)
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Fatalf("expected non-positive override to be ignored, got %d", cfg.BodySizeBytes())
	}

	cfg.SetBodySizeBytes(4096)
	if cfg.BodySizeBytes() != 4096 || cfg.MaxBodySize != "4096" {
		t.Fatalf("expected 4096 override, got %d (%s)", cfg.BodySizeBytes(), cfg.MaxBodySize)
	}

	size, err := ParseSize("1MB")
	if err != nil {
		t.Fatalf("ParseSize() error = %v", err)
	}
	cfg.SetBodySizeBytes(size)
	if cfg.BodySizeBytes() != 1024*1024 {
		t.Fatalf("expected 1MB override, got %d", cfg.BodySizeBytes())
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxBodySizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, input := range []string{"1GB", "abc", "K"} {
		if _, err := ParseSize(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
