package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("VCAP_SERVICES", "")
	cfg, err := LoadFile(writeConfig(t, "http:\n  port: 8000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Search.URL != DefaultSearchURL {
		t.Errorf("search.url = %q", cfg.Search.URL)
	}
	if cfg.Search.MappingPrecision != DefaultMappingPrecision {
		t.Errorf("search.mapping_precision = %q", cfg.Search.MappingPrecision)
	}
	if cfg.Search.VersionTTLSec != DefaultVersionTTLSec {
		t.Errorf("search.version_ttl_sec = %d", cfg.Search.VersionTTLSec)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("http timeouts = %+v", cfg.HTTP)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("VCAP_SERVICES", "")
	t.Setenv("TEST_SEARCH_URL", "http://es.internal:9200")
	cfg, err := LoadFile(writeConfig(t, `
http:
  port: ${TEST_PORT:-9000}
search:
  url: ${TEST_SEARCH_URL}
  mapping_precision: ${TEST_PRECISION:-1km}
  version_ttl_sec: -1
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("http.port = %d", cfg.HTTP.Port)
	}
	if cfg.Search.URL != "http://es.internal:9200" {
		t.Errorf("search.url = %q", cfg.Search.URL)
	}
	if cfg.Search.MappingPrecision != "1km" {
		t.Errorf("search.mapping_precision = %q", cfg.Search.MappingPrecision)
	}
	if cfg.Search.VersionTTLSec != -1 {
		t.Errorf("search.version_ttl_sec = %d, want -1 kept", cfg.Search.VersionTTLSec)
	}
}

func TestLoadFile_VCAPOverridesSearchURL(t *testing.T) {
	t.Setenv("VCAP_SERVICES", `{"searchly":[{"credentials":{"sslUri":"https://user:pw@searchly.example.com"}}]}`)
	cfg, err := LoadFile(writeConfig(t, "http:\n  port: 8000\nsearch:\n  url: http://localhost:9200\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Search.URL != "https://user:pw@searchly.example.com" {
		t.Errorf("search.url = %q", cfg.Search.URL)
	}
}

func TestLoadFile_VCAPWithoutSearchly(t *testing.T) {
	t.Setenv("VCAP_SERVICES", `{"postgres":[{"credentials":{"uri":"postgres://x"}}]}`)
	cfg, err := LoadFile(writeConfig(t, "http:\n  port: 8000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Search.URL != DefaultSearchURL {
		t.Errorf("search.url = %q", cfg.Search.URL)
	}
}

func TestLoadFile_BadVCAP(t *testing.T) {
	t.Setenv("VCAP_SERVICES", `{not json`)
	_, err := LoadFile(writeConfig(t, "http:\n  port: 8000\n"))
	if err == nil || !strings.Contains(err.Error(), "VCAP_SERVICES") {
		t.Errorf("error = %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{HTTP: HTTPConfig{Port: 8000}}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"ok", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too big", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"no scheme", func(c *Config) { c.Search.URL = "127.0.0.1:9200" }, "search.url"},
		{"ftp", func(c *Config) { c.Search.URL = "ftp://es" }, "search.url"},
		{"bad precision", func(c *Config) { c.Search.MappingPrecision = "fine" }, "mapping_precision"},
		{"bare number precision", func(c *Config) { c.Search.MappingPrecision = "50" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error = %v, want mention of %q", err, tt.errSub)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("REGISTRY_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("REGISTRY_TEST_DOTENV", "")
	os.Unsetenv("REGISTRY_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("REGISTRY_TEST_DOTENV"); got != "from-file" {
		t.Errorf("REGISTRY_TEST_DOTENV = %q", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
