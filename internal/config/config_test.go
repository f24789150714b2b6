package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("MARKETPLACE_AUTH_TOKEN_SECRET", "s3cret")
	t.Setenv("MARKETPLACE_DB_DRIVER", "sqlite")
	t.Setenv("MARKETPLACE_HTTP_ADDR", ":9090")

	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.TokenSecret != "s3cret" {
		t.Fatalf("token secret = %q, want s3cret", cfg.Auth.TokenSecret)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("driver = %q, want sqlite", cfg.DB.Driver)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("http addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("token ttl = %v, want 30m", cfg.Auth.TokenTTL)
	}
	if cfg.DB.MaxOpenConns != 10 {
		t.Fatalf("max open conns = %d, want 10", cfg.DB.MaxOpenConns)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
auth:
  token_secret: from-file
  token_ttl: 1h
db:
  driver: sqlite
  sqlite_path: /tmp/m.db
log:
  format: text
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.TokenSecret != "from-file" || cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("auth = %+v", cfg.Auth)
	}
	if cfg.DB.SQLitePath != "/tmp/m.db" {
		t.Fatalf("sqlite path = %q", cfg.DB.SQLitePath)
	}
	if cfg.Log.Format != "text" || cfg.Log.Level != "info" {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"empty secret", func(c *Config) { c.Auth.TokenSecret = "  " }, true},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, true},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }, true},
		{"postgres without host", func(c *Config) { c.DB.Host = "" }, true},
		{"sqlite without path", func(c *Config) { c.DB.Driver = "sqlite"; c.DB.SQLitePath = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.TokenSecret = "secret"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
