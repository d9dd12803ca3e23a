package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DATA_SOURCE", "")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr: got %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DataSource != "sheets" {
		t.Errorf("DataSource: got %q, want sheets", cfg.DataSource)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got %d, want 3", cfg.MaxRetries)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_SOURCE", "Database")
	t.Setenv("SHEET_CACHE_TTL_SECONDS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	if cfg.DataSource != "database" {
		t.Errorf("DataSource: got %q, want database", cfg.DataSource)
	}
	if cfg.SheetCacheTTL != 5*time.Second {
		t.Errorf("SheetCacheTTL: got %v, want 5s", cfg.SheetCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins: got %v", cfg.CORSAllowedOrigins)
	}
}

func TestDSNPrefersDatabaseURL(t *testing.T) {
	cfg := &Config{PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "leads", PostgresSSLMode: "require"}
	want := "host=db port=5432 user=u password=p dbname=leads sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}

	cfg.DatabaseURL = "postgres://u:p@db.supabase.co:5432/postgres"
	if got := cfg.DSN(); got != cfg.DatabaseURL {
		t.Errorf("DSN: got %q, want DATABASE_URL", got)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{DashboardTimezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Error("expected UTC for unknown time zone")
	}
}
